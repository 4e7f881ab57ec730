package twitter

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// oauth1Signer signs requests with OAuth 1.0a user context (HMAC-SHA1).
// Deleting posts and likes requires user context; an app-only bearer token
// cannot mutate the account.
type oauth1Signer struct {
	consumerKey    string
	consumerSecret string
	token          string
	tokenSecret    string
}

func (s oauth1Signer) sign(req *http.Request) error {
	nonce, err := newNonce()
	if err != nil {
		return fmt.Errorf("oauth nonce: %w", err)
	}
	ts := strconv.FormatInt(time.Now().Unix(), 10)

	oauthParams := map[string]string{
		"oauth_consumer_key":     s.consumerKey,
		"oauth_nonce":            nonce,
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        ts,
		"oauth_token":            s.token,
		"oauth_version":          "1.0",
	}

	// Signature base: all oauth params plus the query string. Request bodies
	// here are JSON, which OAuth 1.0a excludes from signing.
	params := make([]string, 0, len(oauthParams)+8)
	for k, v := range oauthParams {
		params = append(params, encode(k)+"="+encode(v))
	}
	for k, vs := range req.URL.Query() {
		for _, v := range vs {
			params = append(params, encode(k)+"="+encode(v))
		}
	}
	sort.Strings(params)

	baseURL := req.URL.Scheme + "://" + req.URL.Host + req.URL.EscapedPath()
	base := strings.ToUpper(req.Method) + "&" + encode(baseURL) + "&" + encode(strings.Join(params, "&"))
	key := encode(s.consumerSecret) + "&" + encode(s.tokenSecret)

	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(base))
	oauthParams["oauth_signature"] = base64.StdEncoding.EncodeToString(mac.Sum(nil))

	keys := make([]string, 0, len(oauthParams))
	for k := range oauthParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("OAuth ")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(encode(k))
		b.WriteString(`="`)
		b.WriteString(encode(oauthParams[k]))
		b.WriteString(`"`)
	}
	req.Header.Set("Authorization", b.String())
	return nil
}

func newNonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// encode applies RFC 3986 percent-encoding (stricter than url.QueryEscape,
// which is what OAuth 1.0a requires).
func encode(s string) string {
	e := url.QueryEscape(s)
	e = strings.ReplaceAll(e, "+", "%20")
	e = strings.ReplaceAll(e, "*", "%2A")
	e = strings.ReplaceAll(e, "%7E", "~")
	return e
}
