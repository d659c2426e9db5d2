package telemetry

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"podnet/internal/domain"
)

func TestRecordOperation(t *testing.T) {
	InitMetrics()
	InitMetrics()

	okBefore := testutil.ToFloat64(Operations.WithLabelValues("connect", "ok"))
	rejBefore := testutil.ToFloat64(Rejections.WithLabelValues("connect", domain.ReasonVlanConflict))

	RecordOperation("connect", nil)
	RecordOperation("connect", fmt.Errorf("%w: interface i1", domain.ErrVlanConflict))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(Operations.WithLabelValues("connect", "ok")))
	assert.Equal(t, rejBefore+1, testutil.ToFloat64(Rejections.WithLabelValues("connect", domain.ReasonVlanConflict)))
}

func TestSetEntityCounts(t *testing.T) {
	SetEntityCounts(2, 3, 4)
	assert.Equal(t, 2.0, testutil.ToFloat64(Entities.WithLabelValues("hosts")))
	assert.Equal(t, 3.0, testutil.ToFloat64(Entities.WithLabelValues("networks")))
	assert.Equal(t, 4.0, testutil.ToFloat64(Entities.WithLabelValues("connections")))
}
