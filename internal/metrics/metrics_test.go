package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserve(t *testing.T) {
	success := OperationsTotal.WithLabelValues("test_observe", StatusSuccess)
	failure := OperationsTotal.WithLabelValues("test_observe", StatusError)
	beforeOK, beforeErr := testutil.ToFloat64(success), testutil.ToFloat64(failure)

	Observe("test_observe", time.Now(), nil)
	Observe("test_observe", time.Now(), nil)
	Observe("test_observe", time.Now(), errors.New("boom"))

	assert.Equal(t, beforeOK+2, testutil.ToFloat64(success))
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(failure))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(OperationDuration), 1)
}
