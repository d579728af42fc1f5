package common

// GetAccountFromArgs extracts the account hint from request arguments. An
// empty hint means the credential store's current account; callers never
// guess an account themselves.
func GetAccountFromArgs(args map[string]interface{}) string {
	if account, ok := args["account"].(string); ok {
		return account
	}
	return ""
}
