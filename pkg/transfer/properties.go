package transfer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PropertyMap names the MOCO custom properties the resolver reads.
type PropertyMap struct {
	Project struct {
		PaymentMethod string `yaml:"payment_method"`
		DirectDebit   string `yaml:"direct_debit"` // value of PaymentMethod marking eligibility
	} `yaml:"project"`
	Customer struct {
		IBAN             string `yaml:"iban"`
		BIC              string `yaml:"bic"`
		AccountHolder    string `yaml:"account_holder"`
		MandateReference string `yaml:"mandate_reference"`
		MandateDate      string `yaml:"mandate_date"`
	} `yaml:"customer"`
}

// DefaultPropertyMap returns the property names used by a German MOCO account.
func DefaultPropertyMap() PropertyMap {
	var m PropertyMap
	m.Project.PaymentMethod = "Zahlbar per"
	m.Project.DirectDebit = "Lastschrift"
	m.Customer.IBAN = "IBAN"
	m.Customer.BIC = "BIC"
	m.Customer.AccountHolder = "Kontoinhaber"
	m.Customer.MandateReference = "Mandatsreferenz"
	m.Customer.MandateDate = "Eingangsdatum des Mandates"
	return m
}

// LoadPropertyMap reads a YAML property mapping.
// Keys missing from the file keep their default names.
func LoadPropertyMap(path string) (PropertyMap, error) {
	m := DefaultPropertyMap()

	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("failed to read property mapping: %w", err)
	}

	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return m, nil
}
