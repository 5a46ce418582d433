package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/Simplici0/price-ranger/internal/pricing"
)

// loadPricingFile overlays the YAML pricing file at path on base. Keys absent
// from the file keep their base value; a non-empty financing list replaces the
// base list.
func loadPricingFile(path string, base Pricing) (Pricing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read pricing file: %w", err)
	}

	var file struct {
		MinMarginPercent  *float64                  `yaml:"minMarginPercent"`
		DefaultAPR        *float64                  `yaml:"defaultApr"`
		DefaultTermMonths *int                      `yaml:"defaultTermMonths"`
		Financing         []pricing.FinancingOption `yaml:"financing"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return base, fmt.Errorf("parse pricing file: %w", err)
	}

	out := base
	if file.MinMarginPercent != nil {
		out.MinMarginPercent = *file.MinMarginPercent
	}
	if file.DefaultAPR != nil {
		out.DefaultAPR = *file.DefaultAPR
	}
	if file.DefaultTermMonths != nil {
		out.DefaultTermMonths = *file.DefaultTermMonths
	}
	if len(file.Financing) > 0 {
		for _, f := range file.Financing {
			if f.Name == "" || f.TermMonths <= 0 {
				return base, fmt.Errorf("financing plan %q needs a name and a positive termLength", f.Name)
			}
		}
		out.Financing = file.Financing
	}
	return out, nil
}
