package testutil

import "testing"

// Given, When and Then name the steps of a scenario test. Steps share state
// through variables captured by the enclosing test and run in order.
func Given(t *testing.T, step string, fn func(t *testing.T)) bool {
	t.Helper()
	return t.Run("given "+step, fn)
}

func When(t *testing.T, step string, fn func(t *testing.T)) bool {
	t.Helper()
	return t.Run("when "+step, fn)
}

func Then(t *testing.T, step string, fn func(t *testing.T)) bool {
	t.Helper()
	return t.Run("then "+step, fn)
}
