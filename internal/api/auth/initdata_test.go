package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testBotToken = "123456:test-bot-token"

// signWebApp builds a Web-App-shaped assertion the way the Telegram
// client would, signed with the WebAppData-derived secret.
func signWebApp(t *testing.T, botToken string, pairs map[string]string) string {
	t.Helper()

	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	parts := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		lines = append(lines, k+"="+pairs[k])
		parts = append(parts, k+"="+pairs[k])
	}

	secret := hmacSHA256([]byte("WebAppData"), []byte(botToken))
	hash := hex.EncodeToString(hmacSHA256(secret, []byte(strings.Join(lines, "\n"))))
	parts = append(parts, "hash="+hash)

	return strings.Join(parts, "&")
}

func webAppPairs(telegramID int64, authDate time.Time) map[string]string {
	userJSON := fmt.Sprintf(`{"id":%d,"first_name":"Ana","username":"ana_w","language_code":"pt"}`, telegramID)
	return map[string]string{
		"query_id":  "AAH0dT0yAAAAAPR1PTKvEvh4",
		"auth_date": strconv.FormatInt(authDate.Unix(), 10),
		"user":      url.QueryEscape(userJSON),
	}
}

func TestVerify_WebAppValid(t *testing.T) {
	t.Parallel()

	v, err := NewVerifier(testBotToken)
	require.NoError(t, err)

	raw := signWebApp(t, testBotToken, webAppPairs(42, time.Now()))

	claim, err := v.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, int64(42), claim.TelegramID)
	require.Equal(t, "Ana", claim.FirstName)
	require.Equal(t, "ana_w", claim.Username)
	require.Equal(t, "pt", claim.LanguageCode)
}

func TestVerify_TamperedHash(t *testing.T) {
	t.Parallel()

	v, _ := NewVerifier(testBotToken)

	raw := signWebApp(t, testBotToken, webAppPairs(42, time.Now()))
	raw = raw[:len(raw)-4] + "0000"

	_, err := v.Verify(raw)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestVerify_WrongToken(t *testing.T) {
	t.Parallel()

	v, _ := NewVerifier(testBotToken)

	raw := signWebApp(t, "999999:another-token", webAppPairs(42, time.Now()))

	_, err := v.Verify(raw)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestVerify_MissingHash(t *testing.T) {
	t.Parallel()

	v, _ := NewVerifier(testBotToken)

	_, err := v.Verify("auth_date=1&user=%7B%22id%22%3A1%7D")
	require.ErrorIs(t, err, ErrMissingHash)
}

func TestVerify_StaleAuthDate(t *testing.T) {
	t.Parallel()

	v, _ := NewVerifier(testBotToken)

	// Signature is valid; only the age check should trip.
	old := time.Now().Add(-25 * time.Hour)
	raw := signWebApp(t, testBotToken, webAppPairs(42, old))

	_, err := v.Verify(raw)
	require.ErrorIs(t, err, ErrStaleAuth)
}

func TestVerify_MissingUser(t *testing.T) {
	t.Parallel()

	v, _ := NewVerifier(testBotToken)

	raw := signWebApp(t, testBotToken, map[string]string{
		"query_id":  "AAH0dT0yAAAAAPR1PTKvEvh4",
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
	})

	_, err := v.Verify(raw)
	require.ErrorIs(t, err, ErrMissingUser)
}

func TestVerify_MalformedUser(t *testing.T) {
	t.Parallel()

	v, _ := NewVerifier(testBotToken)

	cases := map[string]string{
		"not json":   url.QueryEscape("definitely-not-json"),
		"missing id": url.QueryEscape(`{"first_name":"Ana"}`),
		"zero id":    url.QueryEscape(`{"id":0,"first_name":"Ana"}`),
	}

	for name, rawUser := range cases {
		raw := signWebApp(t, testBotToken, map[string]string{
			"query_id":  "AAH0dT0yAAAAAPR1PTKvEvh4",
			"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
			"user":      rawUser,
		})

		_, err := v.Verify(raw)
		require.ErrorIs(t, err, ErrMalformedUser, name)
	}
}

func TestVerify_RelayRoundTrip(t *testing.T) {
	t.Parallel()

	v, _ := NewVerifier(testBotToken)

	raw, err := v.BuildRelayAssertion(RelayUser{
		ID:        77,
		Username:  "bob",
		FirstName: "Bob",
	})
	require.NoError(t, err)

	claim, err := v.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, int64(77), claim.TelegramID)
	require.Equal(t, "bob", claim.Username)
}

func TestVerify_RelayAlternateDerivations(t *testing.T) {
	t.Parallel()

	v, _ := NewVerifier(testBotToken)

	userJSON := `{"id":88,"first_name":"Eva"}`
	authDate := strconv.FormatInt(time.Now().Unix(), 10)
	lines := []string{"auth_date=" + authDate, "user=" + url.QueryEscape(userJSON)}
	decodedLines := []string{"auth_date=" + authDate, "user=" + userJSON}

	tokenDigest := sha256.Sum256([]byte(testBotToken))
	secrets := map[string][]byte{
		"raw token":       []byte(testBotToken),
		"sha256 of token": tokenDigest[:],
		"webappdata hmac": hmacSHA256([]byte("WebAppData"), []byte(testBotToken)),
	}
	messages := map[string][]string{
		"encoded": lines,
		"decoded": decodedLines,
	}

	for sname, secret := range secrets {
		for mname, msg := range messages {
			mac := hmac.New(sha256.New, secret)
			mac.Write([]byte(strings.Join(msg, "\n")))
			hash := hex.EncodeToString(mac.Sum(nil))

			raw := strings.Join(lines, "&") + "&hash=" + hash
			claim, err := v.Verify(raw)
			require.NoErrorf(t, err, "secret=%s message=%s", sname, mname)
			require.Equal(t, int64(88), claim.TelegramID)
		}
	}
}

func TestVerify_RelayBadHashRejected(t *testing.T) {
	t.Parallel()

	v, _ := NewVerifier(testBotToken)

	raw := "auth_date=" + strconv.FormatInt(time.Now().Unix(), 10) +
		"&user=" + url.QueryEscape(`{"id":88}`) +
		"&hash=" + strings.Repeat("ab", 32)

	_, err := v.Verify(raw)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestNewVerifier_EmptyToken(t *testing.T) {
	t.Parallel()

	_, err := NewVerifier("")
	require.ErrorIs(t, err, ErrEmptyBotToken)
}
