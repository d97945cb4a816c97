// Package domain holds the lead captured by the intake endpoint.
package domain

import (
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"
)

// UnknownIP is the client address recorded when no proxy header names one.
const UnknownIP = "unknown"

// EstimateDetails mirrors the chat record at submission time. Nil means the
// visitor never answered that question.
type EstimateDetails struct {
	Service           *string `json:"service"`
	Stories           *int    `json:"stories"`
	WindowType        *string `json:"windowType"`
	PaneCount         *int    `json:"paneCount"`
	SolarPanels       *int    `json:"solarPanels"`
	SolarScreens      *int    `json:"solarScreens"`
	PressureWashSides *int    `json:"pressureWashSides"`
	SoftWashSides     *int    `json:"softWashSides"`
	PermanentLighting bool    `json:"permanentLighting"`
	HardWaterSpots    bool    `json:"hardWaterSpots"`
}

// EstimatedTotal is the quoted price range in whole dollars.
type EstimatedTotal struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Lead is a sanitized, accepted lead.
type Lead struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone"`
	PhoneE164      string          `json:"phoneE164,omitempty"`
	Address        string          `json:"address"`
	Estimate       EstimateDetails `json:"estimate"`
	EstimatedTotal EstimatedTotal  `json:"estimatedTotal"`
	SubmittedAt    time.Time       `json:"submittedAt"`
	Source         string          `json:"source"`
	// IP stays in process; persisted forms carry only IPHash.
	IP     string `json:"-"`
	IPHash string `json:"ipHash,omitempty"`
}

// HashIP returns the hex BLAKE2b-256 digest of ip, or "" for an unknown address.
func HashIP(ip string) string {
	if ip == "" || ip == UnknownIP {
		return ""
	}
	sum := blake2b.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}

// ServiceLabel returns the requested service or "unspecified".
func (l Lead) ServiceLabel() string {
	if l.Estimate.Service == nil || *l.Estimate.Service == "" {
		return "unspecified"
	}
	return *l.Estimate.Service
}
