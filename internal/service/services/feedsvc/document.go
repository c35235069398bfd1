package feedsvc

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

const prolog = "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n"

// document is the feed root. Marshalling through encoding/xml guarantees
// uniform escaping of every text node, which the consumed schema requires.
type document struct {
	XMLName      xml.Name `xml:"Orders"`
	Version      string   `xml:"version,attr"`
	PropertyCode string   `xml:"propertyCode,attr"`
	StartDate    string   `xml:"startDate,attr"`
	EndDate      string   `xml:"endDate,attr"`
	Orders       []record `xml:"Order"`
}

// record is one <Order> block. Field order matches the wire order the feed
// consumer ingests; do not reorder.
type record struct {
	Site            string `xml:"Site"`
	WebID           string `xml:"WebId"`
	SalesChannel    string `xml:"SalesChannel"`
	OrderID         string `xml:"OrderId"`
	SourceSystem    string `xml:"SourceSystem"`
	UserID          string `xml:"UserId"`
	UserEmailDomain string `xml:"UserEmailDomain"`
	UserEmailHash   string `xml:"UserEmailHash"`
	UserPhoneHash   string `xml:"UserPhoneHash"`
	UserSegment     string `xml:"UserSegment"`
	UserCountryCode string `xml:"UserCountryCode"`
	UserCity        string `xml:"UserCity"`
	UserStreet      string `xml:"UserStreet"`
	UserPostalCode  string `xml:"UserPostalCode"`
	UserCreatedAt   string `xml:"UserCreatedAt"`
	Status          string `xml:"Status"`
	Delivered       int    `xml:"Delivered"`
	PaymentType     string `xml:"PaymentType"`
	DeliveryType    string `xml:"DeliveryType"`
	ProcessingType  string `xml:"ProcessingType"`
	CreatedAt       string `xml:"CreatedAt"`
	ModifiedAt      string `xml:"ModifiedAt"`
	OrderedAt       string `xml:"OrderedAt"`
	CurrencyCode    string `xml:"CurrencyCode"`
	Total           string `xml:"Total"`
	DeliveryCost    string `xml:"DeliveryCost"`
	PaymentCost     string `xml:"PaymentCost"`
	ProcessingCost  string `xml:"ProcessingCost"`
	Revenue         string `xml:"Revenue"`
	ProductsCost    string `xml:"ProductsCost"`
	Profit          string `xml:"Profit"`
	Discount        string `xml:"Discount"`
	Delivery        string `xml:"Delivery"`
	Surcharge       string `xml:"Surcharge"`
	Tax             string `xml:"Tax"`
}

// encode renders the UTF-8 document with tab indentation.
func (d *document) encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(prolog)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "\t")
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("failed to encode feed document: %w", err)
	}
	buf.WriteByte('\n')

	return buf.Bytes(), nil
}

// FileName builds the feed file name for the observed date span. The format
// must be reproduced exactly for downstream ingestion.
func FileName(propertyCode, startDate, endDate string) string {
	return "oms-extract-orders_" + propertyCode + "_" + startDate + "-" + endDate + ".xml"
}
