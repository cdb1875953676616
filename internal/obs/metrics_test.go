package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                                   "/",
		"/metrics":                           "/metrics",
		"/v1/employees/abc":                  "/v1/employees/:id",
		"/v1/employees/count":                "/v1/employees/count",
		"/v1/employees/search":               "/v1/employees/search",
		"/v1/employees/department/finance":   "/v1/employees/department/:department",
		"/v1/employees/email/a@example.com":  "/v1/employees/email/:email",
		"/v1/employees":                      "/v1/employees",
		"/v1/employees/abc/extra":            "/v1/employees/abc/extra",
		"/v1/employees/search?name=smith":    "/v1/employees/search",
		"/auth/login":                        "/auth/login",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
