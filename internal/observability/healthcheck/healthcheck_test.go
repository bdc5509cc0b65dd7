package healthcheck

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunChecksTerminatesOnFirstFailure(t *testing.T) {
	var exitCode int
	exited := 0
	exit = func(code int) {
		exitCode = code
		exited++
	}
	t.Cleanup(func() { exit = os.Exit })

	var ran []string
	checker := func(name string, err error) Checker {
		return Checker{Name: name, Check: func(context.Context) error {
			ran = append(ran, name)
			return err
		}}
	}

	runChecks(context.Background(), []Checker{checker("db", nil), checker("queues", nil)})
	assert.Equal(t, 0, exited)
	assert.Equal(t, []string{"db", "queues"}, ran)

	ran = nil
	runChecks(context.Background(), []Checker{
		checker("db", errors.New("no primary")),
		checker("queues", nil),
	})
	assert.Equal(t, 1, exited)
	assert.Equal(t, 1, exitCode)
	assert.Equal(t, []string{"db"}, ran)
}
