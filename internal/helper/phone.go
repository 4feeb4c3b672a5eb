package helper

import (
	"fmt"
	"strings"

	"go.mau.fi/whatsmeow/types"
)

// Defaults for Indonesian numbers on WhatsApp. Both are overridable
// via config so the same code works for other country prefixes.
const (
	DefaultCountryPrefix = "62"
	DefaultAddressSuffix = types.DefaultUserServer
)

// NormalizeNumber converts a raw phone number to its canonical WhatsApp
// address: digits only, leading 0 replaced by the country prefix, and
// the address suffix appended when missing.
//
// The function is deterministic and idempotent; dispatch and the
// contact loader both go through it so a number is formatted the same
// everywhere.
func NormalizeNumber(raw, countryPrefix, suffix string) string {
	local := raw
	if i := strings.IndexByte(raw, '@'); i >= 0 {
		local = raw[:i]
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, local)

	if strings.HasPrefix(digits, "0") {
		digits = countryPrefix + digits[1:]
	}

	return digits + "@" + suffix
}

// ToJID parses a normalized address into a whatsmeow JID.
func ToJID(address string) (types.JID, error) {
	jid, err := types.ParseJID(address)
	if err != nil {
		return types.JID{}, fmt.Errorf("invalid address %q: %w", address, err)
	}
	if jid.User == "" {
		return types.JID{}, fmt.Errorf("invalid address %q: empty user part", address)
	}
	return jid, nil
}

// ExtractPhoneFromJID strips the device and server parts from a JID
// string: "6285148107612:43@s.whatsapp.net" -> "6285148107612".
func ExtractPhoneFromJID(jid string) string {
	beforeAt := jid
	if i := strings.IndexByte(jid, '@'); i >= 0 {
		beforeAt = jid[:i]
	}
	if i := strings.IndexByte(beforeAt, ':'); i >= 0 {
		return beforeAt[:i]
	}
	return beforeAt
}
