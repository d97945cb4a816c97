package email

const subjectLeadNotificationFmt = "New Lead: %s"
