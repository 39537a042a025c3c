package eventstore

import (
	"fmt"

	"github.com/tectonic-sim/platetruth/codec"
	"github.com/tectonic-sim/platetruth/errs"
	"github.com/tectonic-sim/platetruth/format"
	"github.com/tectonic-sim/platetruth/internal/options"
)

type appendConfig struct {
	tickPolicy   format.TickPolicy
	expectedHead *codec.Head
}

// AppendOption configures one call to EventStore.Append.
type AppendOption = options.Option[*appendConfig]

// WithTickPolicy sets how a decreasing tick within the batch is handled.
// The default is format.TickPolicyAllow. Append.go's decreasing-tick
// switch has no default case, so an out-of-range policy would otherwise
// silently behave like TickPolicyAllow; New rejects it here instead.
func WithTickPolicy(policy format.TickPolicy) AppendOption {
	return options.New[*appendConfig](func(c *appendConfig) error {
		switch policy {
		case format.TickPolicyAllow, format.TickPolicyWarn, format.TickPolicyReject:
			c.tickPolicy = policy
			return nil
		default:
			return fmt.Errorf("%w: tick policy %d", errs.ErrInvalidOption, policy)
		}
	})
}

// WithExpectedHead supplies the optimistic-concurrency precondition
// (spec.md §4.3): the append fails with errs.ErrConcurrencyConflict
// unless the stream's current head matches head byte-for-byte.
func WithExpectedHead(head codec.Head) AppendOption {
	return options.NoError[*appendConfig](func(c *appendConfig) {
		c.expectedHead = &head
	})
}

func newAppendConfig(opts []AppendOption) (*appendConfig, error) {
	cfg := &appendConfig{tickPolicy: format.TickPolicyAllow}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}
