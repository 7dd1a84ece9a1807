package treasury

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/moatscreen/pkg/config"
	"github.com/wonny/moatscreen/pkg/httputil"
	"github.com/wonny/moatscreen/pkg/logger"
)

const samplePage = `
<html>
<body>
	<table class="quotes">
		<tr><th>Name</th><th>Yield</th></tr>
		<tr><td>US 2Y</td><td class="y2">4.95%</td></tr>
		<tr><td>US 10Y</td><td class="y10" data-field="yield">4.31%</td></tr>
	</table>
	<span id="fraction" data-value="0.0428">n/a</span>
	<span id="low">0.85%</span>
	<span id="low-attr" data-value="1%">n/a</span>
	<span id="price">98.50</span>
	<span id="junk">N/A</span>
</body>
</html>`

func TestParseRate(t *testing.T) {
	tests := []struct {
		name     string
		selector string
		want     float64
		wantErr  bool
	}{
		{name: "percent text", selector: "[data-field=yield]", want: 0.0431},
		{name: "class selector", selector: "td.y2", want: 0.0495},
		{name: "data-value attribute wins", selector: "#fraction", want: 0.0428},
		{name: "percent below one", selector: "#low", want: 0.0085},
		{name: "one percent", selector: "#low-attr", want: 0.01},
		{name: "implausible price", selector: "#price", wantErr: true},
		{name: "not a number", selector: "#junk", wantErr: true},
		{name: "missing node", selector: "#nothing", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRate(samplePage, tt.selector)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrNoRate), "err = %v", err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestFetchRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bonds" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	httpClient := httputil.New(&config.Config{}, logger.Nop()).DisableRetry()

	c := NewClient(httpClient, nil, server.URL+"/bonds", "")
	require.True(t, c.Enabled())
	rate, err := c.FetchRate(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.0431, rate, 1e-12)

	_, err = NewClient(httpClient, nil, server.URL+"/missing", "").FetchRate(context.Background())
	assert.Error(t, err)
}

func TestFetchRate_NotConfigured(t *testing.T) {
	c := NewClient(nil, nil, "", "")
	assert.False(t, c.Enabled())
	_, err := c.FetchRate(context.Background())
	assert.ErrorIs(t, err, ErrNoRate)
}
