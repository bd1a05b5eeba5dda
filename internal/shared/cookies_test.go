package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDetectCookieFormat(t *testing.T) {
	tt := []struct {
		name string
		blob string
		want CookieFormat
	}{
		{name: "header value", blob: "SID=abc; HSID=def", want: CookieHeader},
		{name: "header with prefix", blob: "Cookie: SID=abc", want: CookieHeader},
		{name: "curl command", blob: "curl 'https://www.youtube.com/' -H 'cookie: SID=abc'", want: CookieCurl},
		{name: "netscape header", blob: "# Netscape HTTP Cookie File\n", want: CookieNetscape},
		{name: "netscape rows", blob: ".youtube.com\tTRUE\t/\tTRUE\t0\tSID\tabc", want: CookieNetscape},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectCookieFormat(tc.blob); got != tc.want {
				t.Errorf("DetectCookieFormat() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCookieFromCurl(t *testing.T) {
	tt := []struct {
		name    string
		curlCmd string
		want    string
		wantErr bool
	}{
		{
			name:    "cookie in -b flag with single quotes",
			curlCmd: `curl -b 'session=abc123' https://www.youtube.com`,
			want:    "session=abc123",
		},
		{
			name:    "cookie in --cookie flag with double quotes",
			curlCmd: `curl --cookie "session=abc123" https://www.youtube.com`,
			want:    "session=abc123",
		},
		{
			name:    "cookie in -H header",
			curlCmd: `curl -H 'Cookie: session=abc123; token=xyz' https://www.youtube.com`,
			want:    "session=abc123; token=xyz",
		},
		{
			name:    "-b cookie takes precedence over -H cookie",
			curlCmd: `curl -H 'Cookie: old=value' -b 'new=value' https://www.youtube.com`,
			want:    "new=value",
		},
		{
			name: "multiline devtools copy",
			curlCmd: `curl 'https://www.youtube.com/youtubei/v1/search' \
  -H 'accept: */*' \
  -H 'authorization: SAPISIDHASH token_here' \
  -H 'cookie: VISITOR_INFO1_LIVE=xyz; CONSENT=YES' \
  --data-raw '{"context":{}}'`,
			want: "VISITOR_INFO1_LIVE=xyz; CONSENT=YES",
		},
		{
			name:    "single quotes keep backslashes",
			curlCmd: `curl -b 'token=a\b\\c' https://www.youtube.com`,
			want:    `token=a\b\\c`,
		},
		{
			name:    "double quotes undo shell escapes",
			curlCmd: `curl -H "Cookie: pref=\"hl=en\"; path=C:\\music" https://www.youtube.com`,
			want:    `pref="hl=en"; path=C:\music`,
		},
		{
			name:    "no cookie",
			curlCmd: `curl -H 'accept: */*' https://www.youtube.com`,
			wantErr: true,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CookieFromCurl(tc.curlCmd)
			if (err != nil) != tc.wantErr {
				t.Fatalf("CookieFromCurl() error = %v, wantErr %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("CookieFromCurl() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseCookies(t *testing.T) {
	t.Run("header", func(t *testing.T) {
		cookies, err := ParseCookies("Cookie: SID=abc; HSID=def;  ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cookies) != 2 {
			t.Fatalf("expected 2 cookies, got %d", len(cookies))
		}
		if cookies[0].Name != "SID" || cookies[0].Value != "abc" || cookies[0].Domain != ".youtube.com" {
			t.Errorf("unexpected first cookie: %+v", cookies[0])
		}
	})

	t.Run("value containing equals", func(t *testing.T) {
		cookies, err := ParseCookies("PREF=f6=40000000&hl=en")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cookies[0].Value != "f6=40000000&hl=en" {
			t.Errorf("expected value to keep '=', got %q", cookies[0].Value)
		}
	})

	t.Run("netscape", func(t *testing.T) {
		blob := "# Netscape HTTP Cookie File\n" +
			".youtube.com\tTRUE\t/\tTRUE\t1767225600\tSID\tabc\n" +
			"#HttpOnly_.youtube.com\tTRUE\t/\tFALSE\t0\tHSID\tdef\n"
		cookies, err := ParseCookies(blob)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cookies) != 2 {
			t.Fatalf("expected 2 cookies, got %d", len(cookies))
		}
		if cookies[0].Expires != 1767225600 || !cookies[0].Secure {
			t.Errorf("unexpected first cookie: %+v", cookies[0])
		}
		if cookies[1].Name != "HSID" || cookies[1].Secure {
			t.Errorf("unexpected second cookie: %+v", cookies[1])
		}
	})

	t.Run("netscape empty value and CRLF", func(t *testing.T) {
		blob := "# Netscape HTTP Cookie File\r\n" +
			".youtube.com\tTRUE\t/\tTRUE\t0\tEMPTY\t\r\n" +
			".youtube.com\tTRUE\t/\tTRUE\t0\tSID\tabc\r\n"
		cookies, err := ParseCookies(blob)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cookies) != 2 {
			t.Fatalf("expected 2 cookies, got %d", len(cookies))
		}
		if cookies[0].Name != "EMPTY" || cookies[0].Value != "" {
			t.Errorf("unexpected empty-value cookie: %+v", cookies[0])
		}
		if cookies[1].Value != "abc" {
			t.Errorf("expected CR to be trimmed, got %q", cookies[1].Value)
		}
	})

	t.Run("malformed netscape", func(t *testing.T) {
		if _, err := ParseCookies(".youtube.com\tTRUE\t/\n"); err == nil {
			t.Error("expected error for short row")
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, err := ParseCookies("   "); err == nil {
			t.Error("expected error for empty blob")
		}
	})
}

func TestWriteCookieFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cookies")

	path, err := WriteCookieFile(`curl -H 'cookie: SID=abc' https://www.youtube.com`, dir)
	if err != nil {
		t.Fatalf("WriteCookieFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read cookie file: %v", err)
	}

	content := string(data)
	if !strings.HasPrefix(content, "# Netscape HTTP Cookie File\n") {
		t.Errorf("missing netscape header: %q", content)
	}
	if !strings.Contains(content, ".youtube.com\tTRUE\t/\tTRUE\t0\tSID\tabc\n") {
		t.Errorf("missing cookie row: %q", content)
	}

	var buf bytes.Buffer
	cookies, _ := ParseCookies(content)
	if err := WriteNetscapeCookies(&buf, cookies); err != nil {
		t.Fatalf("WriteNetscapeCookies() error = %v", err)
	}
	if buf.String() != content {
		t.Errorf("rewriting parsed cookies changed content:\n%s\nvs\n%s", buf.String(), content)
	}
}
