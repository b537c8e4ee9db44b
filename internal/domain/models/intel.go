package models

// ExtractedIntel holds the financial and contact artifacts found in a single message.
// Every slice is sorted and free of duplicates.
type ExtractedIntel struct {
	BankAccounts []string `json:"bank_accounts"`
	IFSCCodes    []string `json:"ifsc_codes"`
	UPIIDs       []string `json:"upi_ids"`
	URLs         []string `json:"urls"`
	Emails       []string `json:"emails"`
	Phones       []string `json:"phones"`
}

// IntelCategory names one artifact category of ExtractedIntel
type IntelCategory string

const (
	IntelBankAccounts IntelCategory = "bank_accounts"
	IntelIFSCCodes    IntelCategory = "ifsc_codes"
	IntelUPIIDs       IntelCategory = "upi_ids"
	IntelURLs         IntelCategory = "urls"
	IntelEmails       IntelCategory = "emails"
	IntelPhones       IntelCategory = "phones"
)

// IntelCategories lists every category in a stable order
var IntelCategories = []IntelCategory{
	IntelBankAccounts, IntelIFSCCodes, IntelUPIIDs, IntelURLs, IntelEmails, IntelPhones,
}

// NewExtractedIntel returns an ExtractedIntel with every category empty but non-nil
func NewExtractedIntel() ExtractedIntel {
	return ExtractedIntel{
		BankAccounts: []string{},
		IFSCCodes:    []string{},
		UPIIDs:       []string{},
		URLs:         []string{},
		Emails:       []string{},
		Phones:       []string{},
	}
}

// Get returns the values for a category
func (i ExtractedIntel) Get(c IntelCategory) []string {
	switch c {
	case IntelBankAccounts:
		return i.BankAccounts
	case IntelIFSCCodes:
		return i.IFSCCodes
	case IntelUPIIDs:
		return i.UPIIDs
	case IntelURLs:
		return i.URLs
	case IntelEmails:
		return i.Emails
	case IntelPhones:
		return i.Phones
	}
	return nil
}

// Set replaces the values for a category
func (i *ExtractedIntel) Set(c IntelCategory, values []string) {
	switch c {
	case IntelBankAccounts:
		i.BankAccounts = values
	case IntelIFSCCodes:
		i.IFSCCodes = values
	case IntelUPIIDs:
		i.UPIIDs = values
	case IntelURLs:
		i.URLs = values
	case IntelEmails:
		i.Emails = values
	case IntelPhones:
		i.Phones = values
	}
}

// Count returns the total number of artifacts across all categories
func (i ExtractedIntel) Count() int {
	n := 0
	for _, c := range IntelCategories {
		n += len(i.Get(c))
	}
	return n
}
