package payment

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Network is the mobile-money network a phone number belongs to.
type Network string

const (
	MTN    Network = "MTN"
	Airtel Network = "AIRTEL"
)

var ErrInvalidPhone = errors.New("payment: invalid phone number")

var (
	mtnPattern    = regexp.MustCompile(`^(?:0(?:77|78|76)[0-9]{7}|\+256(?:77|78|76)[0-9]{7})$`)
	airtelPattern = regexp.MustCompile(`^(?:0(?:70|75)[0-9]{7}|\+256(?:70|75)[0-9]{7})$`)

	mtnPrefixes    = []string{"077", "078", "076", "+25677", "+25678", "+25676"}
	airtelPrefixes = []string{"070", "075", "+25670", "+25675"}
)

// ParseNetwork maps a caller supplied method name to a Network. Empty means not selected.
func ParseNetwork(s string) (Network, bool) {
	switch Network(strings.ToUpper(strings.TrimSpace(s))) {
	case MTN:
		return MTN, true
	case Airtel:
		return Airtel, true
	}
	return "", false
}

// DetectNetwork infers the network from the phone prefix, defaulting to MTN.
func DetectNetwork(phone string) Network {
	if hasPrefix(phone, mtnPrefixes) {
		return MTN
	}
	if hasPrefix(phone, airtelPrefixes) {
		return Airtel
	}
	return MTN
}

// ValidatePhone checks phone against the exact number format of network.
func ValidatePhone(phone string, network Network) error {
	var p *regexp.Regexp
	switch network {
	case MTN:
		p = mtnPattern
	case Airtel:
		p = airtelPattern
	default:
		return fmt.Errorf("validatePhone: %w: unknown network %q", ErrInvalidPhone, network)
	}
	if phone == "" || !p.MatchString(phone) {
		return fmt.Errorf("validatePhone: %w: %q is not a %s number", ErrInvalidPhone, phone, network)
	}
	return nil
}

func hasPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
