package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type PurchaseRequest struct {
	MatchID   int64 `json:"matchId"`
	SectionID int64 `json:"sectionId"`
	Quantity  int   `json:"quantity"`
}

type IssuedTicket struct {
	Code string `json:"code"`
}

// Purchase is the receipt the backend returns for a successful buy.
type Purchase struct {
	PurchaseID  string         `json:"purchaseId"`
	DownloadURL string         `json:"downloadUrl"`
	Tickets     []IssuedTicket `json:"tickets"`

	// Extra keeps whatever else the backend sent; it is carried, not read.
	Extra map[string]json.RawMessage `json:"-"`
}

func (p *Purchase) UnmarshalJSON(data []byte) error {
	type plain Purchase
	var base struct {
		plain
		PurchaseID json.RawMessage `json:"purchaseId"`
	}
	if err := json.Unmarshal(data, &base); err != nil {
		return err
	}
	id, err := purchaseID(base.PurchaseID)
	if err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	delete(all, "purchaseId")
	delete(all, "downloadUrl")
	delete(all, "tickets")
	*p = Purchase(base.plain)
	p.PurchaseID = id
	if len(all) > 0 {
		p.Extra = all
	}
	return nil
}

// purchaseID accepts the id as a JSON string or number and keeps its text.
func purchaseID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("purchaseId: %w", err)
	}
	return n.String(), nil
}

// PurchaseData is what the purchase flow hands to the confirmation page.
type PurchaseData struct {
	Match    Match     `json:"match"`
	Section  Section   `json:"section"`
	Purchase *Purchase `json:"purchase,omitempty"`
}
