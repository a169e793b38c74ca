package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smsnotify/internal/common"
	"smsnotify/internal/domain/notification"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue sums every series of the named metric whose labels include want.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	series:
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue series
				}
			}
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestMetrics_DispatchObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	ctx := context.Background()

	d := &notification.Delivery{
		Request:  &notification.Request{TemplateID: "smsnotify.new_order", To: "+1"},
		Result:   notification.DeliveryResult{Channel: "twilio"},
		Duration: 150 * time.Millisecond,
	}
	m.Delivered(ctx, d)
	m.Delivered(ctx, d)
	m.Failed(ctx, d)

	assert.Equal(t, 2.0, counterValue(t, reg, "smsnotify_deliveries_total", map[string]string{"channel": "twilio", "status": "sent"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "smsnotify_deliveries_total", map[string]string{"status": "failed"}))
}

func TestMetrics_OTPObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	ctx := context.Background()

	m.Issued(ctx, "s")
	m.Verified(ctx, "s", nil)
	m.Verified(ctx, "s", common.ErrCodeMismatch)
	m.Verified(ctx, "s", common.ErrCodeMismatch)
	m.Verified(ctx, "s", common.ErrNoActiveChallenge)

	assert.Equal(t, 1.0, counterValue(t, reg, "smsnotify_otp_issued_total", nil))
	assert.Equal(t, 1.0, counterValue(t, reg, "smsnotify_otp_verifications_total", map[string]string{"outcome": "success"}))
	assert.Equal(t, 2.0, counterValue(t, reg, "smsnotify_otp_verifications_total", map[string]string{"outcome": "mismatch"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "smsnotify_otp_verifications_total", map[string]string{"outcome": "no_challenge"}))
}

func TestMetrics_MiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := New(reg)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/channels/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/channels/twilio", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, 1.0, counterValue(t, reg, "smsnotify_http_requests_total", map[string]string{
		"route":  "/channels/:id",
		"status": "204",
	}))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "smsnotify_http_requests_total")
}
