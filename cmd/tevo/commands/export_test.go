package commands

// SetReadSecret swaps the secret prompt and returns a restore function.
func SetReadSecret(fn func(prompt string) (string, error)) func() {
	original := readSecret
	readSecret = fn

	return func() { readSecret = original }
}
