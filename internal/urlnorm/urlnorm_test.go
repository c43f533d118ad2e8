package urlnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/shpitdev/site-email-crawler/internal/logger"
	"github.com/shpitdev/site-email-crawler/internal/urlnorm"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "whitespace only", in: "  \t ", want: ""},
		{name: "bare domain", in: "acme.com", want: "https://acme.com"},
		{name: "trim and lower", in: "  WWW.Acme.COM/Contact  ", want: "https://www.acme.com/contact"},
		{name: "keeps http", in: "http://acme.com", want: "http://acme.com"},
		{name: "keeps https", in: "HTTPS://Acme.com", want: "https://acme.com"},
		{name: "other scheme gets prefix", in: "ftp://acme.com", want: "https://ftp://acme.com"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, urlnorm.Normalize(tc.in, nil))
		})
	}
}

func TestNormalize_LogsValue(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	got := urlnorm.Normalize("Acme.com", logger.FromZap(zap.New(core)))
	require.Equal(t, "https://acme.com", got)

	entries := logs.FilterMessage("normalized url").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "https://acme.com", entries[0].ContextMap()["url"])
}
