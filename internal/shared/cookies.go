// Utilities for turning browser cookies into a cookies.txt file for yt-dlp.
package shared

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

const (
	netscapeHeader = "# Netscape HTTP Cookie File"
	cookieDomain   = ".youtube.com"
)

var (
	curlHeaderRe = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"((?:[^"\\]|\\.)+)"`)
	curlCookieRe = regexp.MustCompile(`(?:-b|--cookie)\s+'([^']+)'|(?:-b|--cookie)\s+"((?:[^"\\]|\\.)+)"`)

	// backslash escapes that stay meaningful inside a double-quoted shell word
	doubleQuoteUnescaper = strings.NewReplacer(`\\`, `\`, `\"`, `"`, `\$`, `$`, "\\`", "`")
	lineContinuation     = regexp.MustCompile(`\\\r?\n`)
)

// Cookie is a single entry of a Netscape cookies.txt file.
type Cookie struct {
	Domain  string
	Path    string
	Secure  bool
	Expires int64
	Name    string
	Value   string
}

// CookieFormat identifies how a cookie blob was supplied.
type CookieFormat int

const (
	CookieHeader CookieFormat = iota // "a=b; c=d", optionally prefixed by "Cookie:"
	CookieCurl                       // a cURL command copied from browser devtools
	CookieNetscape                   // cookies.txt content
)

func (f CookieFormat) String() string {
	switch f {
	case CookieHeader:
		return "header"
	case CookieCurl:
		return "curl"
	case CookieNetscape:
		return "netscape"
	default:
		return ""
	}
}

// DetectCookieFormat guesses the format of a cookie blob.
func DetectCookieFormat(blob string) CookieFormat {
	trimmed := strings.TrimSpace(blob)
	switch {
	case strings.HasPrefix(trimmed, "curl "):
		return CookieCurl
	case strings.HasPrefix(trimmed, "# HTTP Cookie File"), strings.HasPrefix(trimmed, netscapeHeader):
		return CookieNetscape
	case strings.Contains(trimmed, "\t"):
		return CookieNetscape
	default:
		return CookieHeader
	}
}

// CookieFromCurl extracts the cookie string from a cURL command.
//
// A -b/--cookie flag wins over a "Cookie:" header.
//
// Single-quoted arguments are taken literally; double-quoted ones have their shell
// escapes undone.
func CookieFromCurl(command string) (string, error) {
	command = lineContinuation.ReplaceAllString(command, " ")

	if m := curlCookieRe.FindStringSubmatch(command); len(m) > 2 {
		if m[1] != "" {
			return m[1], nil
		}
		return doubleQuoteUnescaper.Replace(m[2]), nil
	}

	for _, m := range curlHeaderRe.FindAllStringSubmatch(command, -1) {
		line := m[1]
		if line == "" {
			line = doubleQuoteUnescaper.Replace(m[2])
		}
		key, value, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(key), "cookie") {
			return strings.TrimSpace(value), nil
		}
	}

	return "", fmt.Errorf("%w: no cookie found in curl command", ErrInvalidInput)
}

// ParseCookieHeader splits a Cookie header value into entries scoped to domain.
func ParseCookieHeader(header, domain string) ([]Cookie, error) {
	header = strings.TrimSpace(header)
	if key, rest, ok := strings.Cut(header, ":"); ok && strings.EqualFold(strings.TrimSpace(key), "cookie") {
		header = rest
	}

	var cookies []Cookie
	for _, pair := range strings.Split(header, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		cookies = append(cookies, Cookie{
			Domain: domain,
			Path:   "/",
			Secure: true,
			Name:   strings.TrimSpace(name),
			Value:  strings.TrimSpace(value),
		})
	}

	if len(cookies) == 0 {
		return nil, fmt.Errorf("%w: no name=value pairs in cookie header", ErrInvalidInput)
	}
	return cookies, nil
}

// ParseNetscapeCookies reads cookies.txt content. Comment lines are skipped,
// except for the "#HttpOnly_" prefix browsers use to mark http-only cookies.
func ParseNetscapeCookies(r io.Reader) ([]Cookie, error) {
	var cookies []Cookie
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		// a cookie with an empty value ends in a tab, so only the line ending is trimmed
		text := strings.TrimRight(scanner.Text(), "\r")
		text = strings.TrimPrefix(text, "#HttpOnly_")
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) != 7 {
			return nil, fmt.Errorf("%w: line %d has %d fields, want 7", ErrInvalidInput, line, len(fields))
		}
		expires, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad expiry %q", ErrInvalidInput, line, fields[4])
		}
		cookies = append(cookies, Cookie{
			Domain:  fields[0],
			Path:    fields[2],
			Secure:  strings.EqualFold(fields[3], "TRUE"),
			Expires: expires,
			Name:    fields[5],
			Value:   fields[6],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("%w: cookie file has no entries", ErrInvalidInput)
	}
	return cookies, nil
}

// ParseCookies accepts any supported cookie blob and returns its entries.
func ParseCookies(blob string) ([]Cookie, error) {
	switch DetectCookieFormat(blob) {
	case CookieCurl:
		header, err := CookieFromCurl(blob)
		if err != nil {
			return nil, err
		}
		return ParseCookieHeader(header, cookieDomain)
	case CookieNetscape:
		return ParseNetscapeCookies(strings.NewReader(blob))
	default:
		return ParseCookieHeader(blob, cookieDomain)
	}
}

// WriteNetscapeCookies writes cookies in the cookies.txt format understood by yt-dlp.
func WriteNetscapeCookies(w io.Writer, cookies []Cookie) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, netscapeHeader)
	for _, c := range cookies {
		subdomains := "FALSE"
		if strings.HasPrefix(c.Domain, ".") {
			subdomains = "TRUE"
		}
		secure := "FALSE"
		if c.Secure {
			secure = "TRUE"
		}
		path := c.Path
		if path == "" {
			path = "/"
		}
		fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n", c.Domain, subdomains, path, secure, c.Expires, c.Name, c.Value)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write cookies: %w", err)
	}
	return nil
}

// WriteCookieFile parses blob and writes it as cookies.txt inside dir, returning the file path.
func WriteCookieFile(blob, dir string) (string, error) {
	cookies, err := ParseCookies(blob)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create cookie directory: %w", err)
	}

	path := filepath.Join(dir, "cookies.txt")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return "", fmt.Errorf("failed to create cookie file: %w", err)
	}
	defer f.Close()

	if err := WriteNetscapeCookies(f, cookies); err != nil {
		return "", err
	}
	return path, nil
}
