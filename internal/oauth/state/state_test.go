package state

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientlinkhq/clientlink/internal/catalog"
)

func metaCodec() *Codec {
	return NewCodec(catalog.PlatformMeta, catalog.Default())
}

// subsets enumerates every subset of ids. Fine for the five-option catalog.
func subsets(ids []string) [][]string {
	out := [][]string{{}}
	for _, id := range ids {
		for _, prev := range append([][]string(nil), out...) {
			next := append(append([]string{}, prev...), id)
			out = append(out, next)
		}
	}
	return out
}

func TestRoundTrip_AllSubsets(t *testing.T) {
	c := metaCodec()
	ctx := context.Background()
	for _, sel := range subsets(c.KnownIDs()) {
		enc := c.EncodeSelection(sel)
		got := c.DecodeSelection(ctx, enc)
		assert.ElementsMatch(t, sel, got, "selection %v", sel)
	}
}

func TestEncode_OrderIndependent(t *testing.T) {
	c := metaCodec()
	a := c.EncodeSelection([]string{"ad_account", "page_all_permissions"})
	b := c.EncodeSelection([]string{"page_all_permissions", "ad_account"})
	assert.Equal(t, a, b)
}

func TestDecode_MalformedFailsSoft(t *testing.T) {
	c := metaCodec()
	ctx := context.Background()
	for _, tok := range []string{
		"not-valid-base64!!",
		base64.StdEncoding.EncodeToString([]byte("not json")),
		base64.StdEncoding.EncodeToString([]byte(`["array","not","object"]`)),
		"=====",
	} {
		got := c.DecodeSelection(ctx, tok)
		require.NotNil(t, got)
		assert.Empty(t, got, "token %q", tok)
	}
}

func TestDecode_EmptyToken(t *testing.T) {
	c := metaCodec()
	assert.Empty(t, c.DecodeSelection(context.Background(), ""))
	assert.Empty(t, c.DecodeSelection(context.Background(), "   "))
}

func TestDecode_SparseRecord(t *testing.T) {
	// Records with only the selected keys present must decode too; this is
	// the historical shape: base64({"ad":true}) => ad_account.
	c := metaCodec()
	got := c.DecodeSelection(context.Background(), "eyJhZCI6dHJ1ZX0=")
	assert.Equal(t, []string{"ad_account"}, got)
}

func TestDecode_UnknownKeysIgnored(t *testing.T) {
	c := metaCodec()
	tok := base64.StdEncoding.EncodeToString([]byte(`{"ad":true,"mystery":true}`))
	got := c.DecodeSelection(context.Background(), tok)
	assert.Equal(t, []string{"ad_account"}, got)
}

func TestDecode_MissingPadding(t *testing.T) {
	c := metaCodec()
	// Same record as TestDecode_SparseRecord with the '=' stripped.
	got := c.DecodeSelection(context.Background(), "eyJhZCI6dHJ1ZX0")
	assert.Equal(t, []string{"ad_account"}, got)
}

func TestJoinSplit(t *testing.T) {
	tok, sel := Split(Join("abc123", "eyJhZCI6dHJ1ZX0="))
	assert.Equal(t, "abc123", tok)
	assert.Equal(t, "eyJhZCI6dHJ1ZX0=", sel)

	tok, sel = Split("abc123")
	assert.Equal(t, "abc123", tok)
	assert.Empty(t, sel)

	assert.Equal(t, "abc123", Join("abc123", ""))

	// Extra delimiters stay in the selection portion.
	tok, sel = Split("a|b|c")
	assert.Equal(t, "a", tok)
	assert.Equal(t, "b|c", sel)
}

func TestEndToEndScenario(t *testing.T) {
	// state "abc123|eyJhZCI6dHJ1ZX0=" => token abc123, selection
	// [ad_account], scopes [business_management ads_read].
	c := metaCodec()
	cat := catalog.Default()

	tok, enc := Split("abc123|eyJhZCI6dHJ1ZX0=")
	require.Equal(t, "abc123", tok)
	sel := c.DecodeSelection(context.Background(), enc)
	require.Equal(t, []string{"ad_account"}, sel)
	scopes := cat.ScopesForSelection(catalog.PlatformMeta, sel)
	assert.Equal(t, []string{"business_management", "ads_read"}, scopes)
}

func TestAdminSigner_RoundTrip(t *testing.T) {
	s := NewHMACSigner([]byte("test-secret"), "clientlink", time.Minute)
	tok, err := s.SignAdminState(AdminClaims{Platform: "meta", AdminID: "adm-1", Nonce: "n-1"})
	require.NoError(t, err)

	claims, err := s.ParseAdminState(tok)
	require.NoError(t, err)
	assert.Equal(t, "meta", claims.Platform)
	assert.Equal(t, "adm-1", claims.AdminID)
	assert.Equal(t, "n-1", claims.Nonce)
}

func TestAdminSigner_RejectsTampering(t *testing.T) {
	s := NewHMACSigner([]byte("test-secret"), "clientlink", time.Minute)
	tok, err := s.SignAdminState(AdminClaims{Platform: "meta", AdminID: "adm-1", Nonce: "n-1"})
	require.NoError(t, err)

	other := NewHMACSigner([]byte("different-secret"), "clientlink", time.Minute)
	_, err = other.ParseAdminState(tok)
	assert.ErrorIs(t, err, ErrStateInvalid)

	_, err = s.ParseAdminState(tok + "x")
	assert.ErrorIs(t, err, ErrStateInvalid)
}

func TestAdminSigner_Expiry(t *testing.T) {
	s := NewHMACSigner([]byte("test-secret"), "clientlink", time.Minute)
	past := time.Now().Add(-time.Hour)
	s.now = func() time.Time { return past }
	tok, err := s.SignAdminState(AdminClaims{Platform: "meta", AdminID: "adm-1", Nonce: "n-1"})
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.ParseAdminState(tok)
	assert.ErrorIs(t, err, ErrStateExpired)
}
