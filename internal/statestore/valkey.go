package statestore

import (
	"context"

	"github.com/valkey-io/valkey-go"
)

// Valkey is the primary shared store. Change notification rides on pub/sub:
// every Set publishes the key on its notify channel, so subscribers wake
// without polling. Delivery is best-effort; the engine polls regardless.
type Valkey struct {
	client valkey.Client
	prefix string
}

func NewValkey(address, keyPrefix string) (*Valkey, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{address},
	})
	if err != nil {
		return nil, err
	}
	return &Valkey{client: client, prefix: keyPrefix}, nil
}

func (v *Valkey) key(k string) string    { return v.prefix + k }
func (v *Valkey) notify(k string) string { return v.prefix + "notify:" + k }

func (v *Valkey) Get(ctx context.Context, key string) ([]byte, bool, error) {
	resp := v.client.Do(ctx, v.client.B().Get().Key(v.key(key)).Build())
	b, err := resp.AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (v *Valkey) Set(ctx context.Context, key string, value []byte) error {
	err := v.client.Do(ctx, v.client.B().Set().Key(v.key(key)).Value(valkey.BinaryString(value)).Build()).Error()
	if err != nil {
		return err
	}
	// Best-effort wakeup for subscribers. A lost publish only costs latency:
	// pollers catch up on the next interval.
	v.client.Do(ctx, v.client.B().Publish().Channel(v.notify(key)).Message("1").Build())
	return nil
}

func (v *Valkey) Subscribe(ctx context.Context, key string, fn func()) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)
	go func() {
		// Receive blocks on a dedicated connection until subCtx is canceled.
		_ = v.client.Receive(subCtx, v.client.B().Subscribe().Channel(v.notify(key)).Build(),
			func(msg valkey.PubSubMessage) { fn() })
	}()
	return cancel, nil
}

func (v *Valkey) Close() error {
	v.client.Close()
	return nil
}
