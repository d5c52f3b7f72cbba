package core

import (
	"regexp"
	"strings"
)

// fromPattern matches a `Name <email>` style From value.
var fromPattern = regexp.MustCompile(`^(.+?)\s*<(.+?)>$`)

// ParseHeaders turns raw header lines into a structured view. Lines without
// a ':' separator are skipped, header names are case-insensitive and the
// content type defaults to text/html. Malformed input never fails; at worst
// the structured fields stay empty.
func ParseHeaders(lines []string) ParsedHeaders {
	parsed := ParsedHeaders{ContentType: "text/html"}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		name, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.TrimSpace(value)

		switch name {
		case "from":
			parsed.From = parseFromValue(value)
		case "cc":
			parsed.CC = value
		case "bcc":
			parsed.BCC = value
		case "reply-to":
			parsed.ReplyTo = value
		case "content-type":
			parsed.ContentType = value
		}
	}

	return parsed
}

// ParseHeaderBlock splits a newline-separated header block and parses it.
func ParseHeaderBlock(raw string) ParsedHeaders {
	return ParseHeaders(strings.Split(raw, "\n"))
}

// parseFromValue parses a `Name <email>` From value, stripping surrounding
// quotes from the display name. A value without angle brackets is treated
// as a bare email with no name.
func parseFromValue(value string) Address {
	if m := fromPattern.FindStringSubmatch(value); m != nil {
		return Address{
			Name:  strings.Trim(m[1], `"'`),
			Email: strings.TrimSpace(m[2]),
		}
	}
	return Address{Email: value}
}

// NormalizeRecipients returns an already-split recipient list unchanged
// (order kept, duplicates pass through); a single comma-joined element is
// split the way a raw header value would be.
func NormalizeRecipients(to []string) []string {
	if len(to) == 1 && strings.Contains(to[0], ",") {
		return NormalizeAddresses(to[0])
	}
	return to
}

// NormalizeAddresses splits a comma-joined address value into a trimmed
// list, dropping empty pieces and preserving order. Duplicates pass through
// untouched.
func NormalizeAddresses(value string) []string {
	var addresses []string
	for _, piece := range strings.Split(value, ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		addresses = append(addresses, piece)
	}
	return addresses
}
