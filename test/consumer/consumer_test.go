package consumer

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shpitdev/site-email-crawler/pkg/business"
	"github.com/shpitdev/site-email-crawler/pkg/pipeline/core"
	localio "github.com/shpitdev/site-email-crawler/pkg/pipeline/io/local"
	"github.com/shpitdev/site-email-crawler/pkg/pipeline/redact"
	"github.com/shpitdev/site-email-crawler/pkg/pipeline/schema"
	"github.com/shpitdev/site-email-crawler/pkg/pipeline/worker"
)

type upperNames struct{}

func (upperNames) Process(_ context.Context, r business.Record) (business.Record, error) {
	r.BusinessName = strings.ToUpper(r.BusinessName)
	return r, nil
}

func TestPublicPackagesUsableFromAnotherModule(t *testing.T) {
	t.Parallel()

	records, err := localio.ReadBusinesses(strings.NewReader(`[{"businessName":"acme","websiteLink":"acme.com","city":"Oslo"}]`), schema.FormatJSON)
	if err != nil {
		t.Fatalf("ReadBusinesses failed: %v", err)
	}

	var p core.Processor[business.Record, business.Record] = upperNames{}
	out, err := worker.ProcessAll(context.Background(), records, p.Process, worker.Options{Workers: 1})
	if err != nil {
		t.Fatalf("ProcessAll failed: %v", err)
	}
	if len(out) != 1 || out[0].Err != nil {
		t.Fatalf("unexpected results: %#v", out)
	}

	rec := out[0].Output
	rec.SetEmail("info@acme.com")

	var buf bytes.Buffer
	if err := localio.WriteBusinesses(&buf, schema.FormatCSV, []business.Record{rec}); err != nil {
		t.Fatalf("WriteBusinesses failed: %v", err)
	}
	want := "businessName,websiteLink,city,email\nACME,acme.com,Oslo,info@acme.com\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s", buf.String())
	}

	if got := redact.Secrets("https://u:p@acme.com"); strings.Contains(got, "u:p") {
		t.Fatalf("credentials not redacted: %q", got)
	}
}
