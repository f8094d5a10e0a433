package validate

import (
	"testing"

	"accounts-api/internal/i18n"
)

func testSchema() Schema {
	return Schema{Fields: []Field{
		{Name: "first_name", Rules: []Rule{Required()}},
		{Name: "contact_phone", Rules: []Rule{Required(), Digits()}},
		{Name: "email", Rules: []Rule{Required(), Email()}},
		{Name: "password", Rules: []Rule{Required()}},
		{Name: "cnf_password", Rules: []Rule{Required(), EqualsField("password", "password_mismatch")}},
	}}
}

func validValues() map[string]string {
	return map[string]string{
		"first_name":    "Ana",
		"contact_phone": "5551234",
		"email":         "ana@example.com",
		"password":      "secret1",
		"cnf_password":  "secret1",
	}
}

func TestSchemaEvaluate_ValidInput(t *testing.T) {
	catalog := i18n.NewCatalog([]string{"en", "de"}, "en")
	failures := testSchema().Evaluate(validValues(), "en", catalog)
	if len(failures) != 0 {
		t.Fatalf("expected no failures, got %+v", failures)
	}
}

func TestSchemaEvaluate_EachFieldIndependent(t *testing.T) {
	catalog := i18n.NewCatalog([]string{"en", "de"}, "en")
	cases := []struct {
		name  string
		field string
		value string
	}{
		{"missing first name", "first_name", ""},
		{"missing phone", "contact_phone", ""},
		{"non numeric phone", "contact_phone", "555-1234"},
		{"missing email", "email", ""},
		{"invalid email", "email", "not-an-email"},
		{"missing password", "password", ""},
		{"missing confirmation", "cnf_password", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			values := validValues()
			values[tc.field] = tc.value
			failures := testSchema().Evaluate(values, "en", catalog)
			if len(failures) == 0 {
				t.Fatalf("expected a failure for %s", tc.field)
			}
			found := false
			for _, f := range failures {
				if f.Param == tc.field {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected failure naming %s, got %+v", tc.field, failures)
			}
		})
	}
}

func TestSchemaEvaluate_FirstViolationPerField(t *testing.T) {
	catalog := i18n.NewCatalog([]string{"en", "de"}, "en")
	values := validValues()
	values["contact_phone"] = ""
	failures := testSchema().Evaluate(values, "en", catalog)
	if len(failures) != 1 {
		t.Fatalf("expected single failure, got %+v", failures)
	}
	if failures[0].Param != "contact_phone" || failures[0].Msg != "is required" {
		t.Fatalf("unexpected failure: %+v", failures[0])
	}
}

func TestSchemaEvaluate_PasswordMismatch(t *testing.T) {
	catalog := i18n.NewCatalog([]string{"en", "de"}, "en")
	values := validValues()
	values["cnf_password"] = "other"
	failures := testSchema().Evaluate(values, "en", catalog)
	if len(failures) != 1 || failures[0].Param != "cnf_password" {
		t.Fatalf("expected cnf_password failure, got %+v", failures)
	}
	if failures[0].Msg != "must match password" {
		t.Fatalf("unexpected message: %q", failures[0].Msg)
	}
}

func TestSchemaEvaluate_LocalizedMessages(t *testing.T) {
	catalog := i18n.NewCatalog([]string{"en", "de"}, "en")
	values := validValues()
	values["first_name"] = ""
	failures := testSchema().Evaluate(values, "de", catalog)
	if len(failures) != 1 {
		t.Fatalf("expected single failure, got %+v", failures)
	}
	if failures[0].Msg != "ist erforderlich" {
		t.Fatalf("expected german message, got %q", failures[0].Msg)
	}
}

func TestDigits_AllowsOnlyDigits(t *testing.T) {
	rule := Digits()
	if !rule.Check("5551234", nil) {
		t.Fatalf("expected digits to pass")
	}
	if rule.Check("555 1234", nil) {
		t.Fatalf("expected digits with spaces inside to fail")
	}
	if rule.Check("+5551234", nil) {
		t.Fatalf("expected plus prefix to fail")
	}
}
