// Package model contains domain models passed between layers.
package model

import (
	"bytes"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FlexID is an identifier the upstream sends either as a JSON number or a
// JSON string. null and absent decode to "".
type FlexID string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(strings.TrimSpace(s))
		return nil
	}
	var n jsoniter.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

// String returns the identifier text.
func (f FlexID) String() string { return string(f) }

// OptFloat is a nullable number that also accepts numeric strings.
// Anything else (null, "", garbage) decodes as absent.
type OptFloat struct {
	Value float64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptFloat) UnmarshalJSON(data []byte) error {
	*o = OptFloat{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	text := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		text = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	*o = OptFloat{Value: v, Valid: true}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (o OptFloat) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, o.Value, 'g', -1, 64), nil
}

// Ptr returns the value as a pointer, nil when absent.
func (o OptFloat) Ptr() *float64 {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// Some builds a present OptFloat.
func Some(v float64) OptFloat { return OptFloat{Value: v, Valid: true} }

// RawRef is the {id, name, code} shape the upstream uses for nested references.
type RawRef struct {
	ID   FlexID `json:"id"`
	Name string `json:"name,omitempty"`
	Code string `json:"code,omitempty"`
}

// RawTeam is the nested team object inside an alliance entry.
type RawTeam struct {
	ID   FlexID `json:"id"`
	Name string `json:"name,omitempty"`
	Code string `json:"code,omitempty"`
}

// RawTeamRef is one alliance member. The id may live in team.id, team_id or id.
type RawTeamRef struct {
	Team   *RawTeam `json:"team,omitempty"`
	TeamID FlexID   `json:"team_id,omitempty"`
	ID     FlexID   `json:"id,omitempty"`
}

// RawAlliance is one side of a raw match.
type RawAlliance struct {
	Color string       `json:"color"`
	Score OptFloat     `json:"score"`
	Teams []RawTeamRef `json:"teams"`
}

// RawMatch mirrors the upstream match record. Every field is optional.
type RawMatch struct {
	ID        FlexID        `json:"id"`
	Name      string        `json:"name,omitempty"`
	Round     FlexID        `json:"round,omitempty"`
	MatchNum  FlexID        `json:"matchnum,omitempty"`
	Instance  FlexID        `json:"instance,omitempty"`
	Field     FlexID        `json:"field,omitempty"`
	Scheduled string        `json:"scheduled,omitempty"`
	Started   string        `json:"started,omitempty"`
	UpdatedAt string        `json:"updated_at,omitempty"`
	Event     *RawRef       `json:"event,omitempty"`
	Division  *RawRef       `json:"division,omitempty"`
	Alliances []RawAlliance `json:"alliances"`
}

// Float parses the identifier as a number. ok is false for empty or
// non-numeric ids.
func (f FlexID) Float() (v float64, ok bool) {
	v, err := strconv.ParseFloat(string(f), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
