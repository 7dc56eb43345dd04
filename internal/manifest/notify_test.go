package manifest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNotifiersFanOut(t *testing.T) {
	var calls []string
	record := func(name string) Notifier {
		return NotifierFunc(func(title, message string) error {
			calls = append(calls, name+":"+title)
			return nil
		})
	}
	boom := errors.New("boom")

	ns := Notifiers{
		record("a"),
		NotifierFunc(func(string, string) error { return boom }),
		record("b"),
		LogNotifier{Logger: zap.NewNop()},
	}
	err := ns.Notify("t", "m")

	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, []string{"a:t", "b:t"}, calls)
	assert.NoError(t, Notifiers{}.Notify("t", "m"))
}
