package statsig

import "strings"

// User is the subject a gate or dynamic config is evaluated against.
//
// UserID is required at the API boundary (CheckGate/GetConfig/etc reject an
// empty UserID); every other field is optional. PrivateAttributes are used
// for targeting only and are stripped before an exposure event is logged.
type User struct {
	UserID            string            `json:"userID"`
	Email             string            `json:"email,omitempty"`
	IPAddress         string            `json:"ip,omitempty"`
	UserAgent         string            `json:"userAgent,omitempty"`
	Country           string            `json:"country,omitempty"`
	Locale            string            `json:"locale,omitempty"`
	AppVersion        string            `json:"appVersion,omitempty"`
	Custom            map[string]string `json:"custom,omitempty"`
	PrivateAttributes map[string]string `json:"privateAttributes,omitempty"`
	CustomIDs         map[string]string `json:"customIDs,omitempty"`
	Environment       Environment       `json:"environment"`
}

// Environment carries the caller-configured deployment tier. Only Tier is
// recognized by environmentField conditions.
type Environment struct {
	Tier string `json:"tier"`
}

// unitID selects the identifier that seeds bucket hashing for idType. A
// case-insensitive "userid" (or empty idType) always means UserID; anything
// else is looked up in CustomIDs, falling back to UserID if absent.
func (u User) unitID(idType string) string {
	if idType == "" || strings.EqualFold(idType, "userid") {
		return u.UserID
	}
	if val, ok := u.CustomIDs[idType]; ok {
		return val
	}
	if val, ok := u.CustomIDs[strings.ToLower(idType)]; ok {
		return val
	}
	return u.UserID
}

// getField performs a case-insensitive lookup across the fixed top-level
// fields, then Custom, then PrivateAttributes. Returns (value, found).
func (u User) getField(field string) (string, bool) {
	switch strings.ToLower(field) {
	case "userid", "user_id":
		return u.UserID, true
	case "email":
		return u.Email, true
	case "ip", "ipaddress", "ip_address":
		return u.IPAddress, true
	case "useragent", "user_agent":
		return u.UserAgent, true
	case "country":
		return u.Country, true
	case "locale":
		return u.Locale, true
	case "appversion", "app_version":
		return u.AppVersion, true
	}
	if val, ok := u.Custom[field]; ok {
		return val, true
	}
	if val, ok := u.Custom[strings.ToLower(field)]; ok {
		return val, true
	}
	if val, ok := u.PrivateAttributes[field]; ok {
		return val, true
	}
	if val, ok := u.PrivateAttributes[strings.ToLower(field)]; ok {
		return val, true
	}
	return "", false
}

// getEnvironmentField only recognizes "tier"; everything else is absent.
func (u User) getEnvironmentField(field string) (string, bool) {
	if strings.EqualFold(field, "tier") {
		return u.Environment.Tier, u.Environment.Tier != ""
	}
	return "", false
}

// sanitizedForLogging strips PrivateAttributes before the user is embedded
// in an exposure or custom event, matching the teacher's logger.go
// convention of never shipping private targeting attributes to telemetry.
func (u User) sanitizedForLogging() User {
	u.PrivateAttributes = nil
	return u
}
