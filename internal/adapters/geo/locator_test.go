package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/valentine-quest/internal/domain"
)

func TestLookup_Primary(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/8.8.8.8/json/", r.URL.Path)
		w.Write([]byte(`{"ip":"8.8.8.8","city":"Mountain View","region":"California","country_name":"United States","postal":"94043","latitude":37.42,"longitude":-122.08,"timezone":"America/Los_Angeles","org":"GOOGLE"}`))
	}))
	defer primary.Close()

	l := NewLocator(primary.URL, "http://unused.invalid", time.Second)
	info, err := l.Lookup(context.Background(), "8.8.8.8")
	require.NoError(t, err)
	assert.Equal(t, "Mountain View", info.City)
	assert.Equal(t, "United States", info.Country)
	assert.InDelta(t, 37.42, info.Latitude, 0.001)
}

func TestLookup_UnknownIPUsesSelfEndpoint(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json/", r.URL.Path)
		w.Write([]byte(`{"ip":"203.0.113.9","city":"Noida"}`))
	}))
	defer primary.Close()

	l := NewLocator(primary.URL, "http://unused.invalid", time.Second)
	info, err := l.Lookup(context.Background(), "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.9", info.IP)
}

func TestLookup_KnownIPSkipsFallback(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer primary.Close()

	var fallbackCalls atomic.Int32
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fallbackCalls.Add(1)
		w.Write([]byte(`{"ip":"198.51.100.1"}`))
	}))
	defer fallback.Close()

	l := NewLocator(primary.URL, fallback.URL, time.Second)
	info, err := l.Lookup(context.Background(), "8.8.4.4")
	require.NoError(t, err)
	assert.Equal(t, &domain.IPInfo{IP: "8.8.4.4"}, info)
	assert.Zero(t, fallbackCalls.Load())
}

func TestLookup_Fallback(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":true,"reason":"RateLimited"}`))
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ip":"198.51.100.1"}`))
	}))
	defer fallback.Close()

	l := NewLocator(primary.URL, fallback.URL, time.Second)
	info, err := l.Lookup(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, &domain.IPInfo{IP: "198.51.100.1"}, info)
}

func TestLookup_BothFail(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer fallback.Close()

	l := NewLocator(primary.URL, fallback.URL, time.Second)
	info, err := l.Lookup(context.Background(), "")
	require.Error(t, err)
	assert.Nil(t, info)
	assert.Equal(t, domain.KindDecode, domain.KindOf(err))
}

func TestPublicIP(t *testing.T) {
	assert.Equal(t, "", PublicIP(""))
	assert.Equal(t, "", PublicIP("garbage"))
	assert.Equal(t, "", PublicIP("10.0.0.4"))
	assert.Equal(t, "", PublicIP("192.168.1.2"))
	assert.Equal(t, "", PublicIP("::1"))
	assert.Equal(t, "8.8.8.8", PublicIP("8.8.8.8:443"))
	assert.Equal(t, "2001:4860:4860::8888", PublicIP("2001:4860:4860::8888"))
}
