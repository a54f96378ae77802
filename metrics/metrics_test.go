package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

type TestMetricsSuite struct {
	suite.Suite
	metrics *Metrics
}

func (suite *TestMetricsSuite) SetupTest() {
	suite.metrics = New()
}

func (suite *TestMetricsSuite) TestCounters() {
	suite.metrics.CountGrant("completed")
	suite.metrics.CountGrant("completed")
	suite.metrics.CountGrant("unauthorized")
	suite.metrics.CountSnapshot(false)
	suite.metrics.CountSnapshot(true)
	suite.metrics.CountRequest("http", "snapshot")
	suite.metrics.CountLimited()

	suite.Require().Equal(float64(2), testutil.ToFloat64(suite.metrics.grants.WithLabelValues("completed")))
	suite.Require().Equal(float64(1), testutil.ToFloat64(suite.metrics.grants.WithLabelValues("unauthorized")))
	suite.Require().Equal(float64(1), testutil.ToFloat64(suite.metrics.snapshots.WithLabelValues("failed")))
	suite.Require().Equal(float64(1), testutil.ToFloat64(suite.metrics.requests.WithLabelValues("http", "snapshot")))
	suite.Require().Equal(float64(1), testutil.ToFloat64(suite.metrics.limited))

	// every instance has own counters
	suite.Require().Equal(float64(0), testutil.ToFloat64(New().limited))
}

func (suite *TestMetricsSuite) TestHandler() {
	suite.metrics.CountGrant("timeout")

	recorder := httptest.NewRecorder()
	suite.metrics.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	suite.Require().Equal(http.StatusOK, recorder.Code)

	body := recorder.Body.String()
	suite.Require().True(strings.Contains(body, `ballot_grant_outcomes_total{state="timeout"} 1`))
}

func TestMetrics(t *testing.T) {
	suite.Run(t, new(TestMetricsSuite))
}
