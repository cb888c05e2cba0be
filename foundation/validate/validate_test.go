package validate_test

import (
	"testing"

	"github.com/ardanlabs/ledger/foundation/validate"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type newTx struct {
	Amount float64 `json:"amount" validate:"gt=0"`
	From   string  `json:"from" validate:"required"`
	To     string  `json:"to" validate:"required"`
}

func Test_Check(t *testing.T) {
	t.Log("Given the need to validate request models.")
	{
		t.Logf("\tTest 0:\tWhen the model is valid.")
		{
			if err := validate.Check(newTx{Amount: 10, From: "a", To: "b"}); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould pass validation: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould pass validation.", success)
		}

		t.Logf("\tTest 1:\tWhen the model is missing fields.")
		{
			err := validate.Check(newTx{From: "a"})
			if !validate.IsFieldErrors(err) {
				t.Fatalf("\t%s\tTest 1:\tShould get field errors: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould get field errors.", success)

			fields := validate.GetFieldErrors(err).Fields()
			if len(fields) != 2 || fields["amount"] == "" || fields["to"] == "" {
				t.Fatalf("\t%s\tTest 1:\tShould use the json names: %v", failed, fields)
			}
			t.Logf("\t%s\tTest 1:\tShould use the json names.", success)

			if fields["to"] != "to is a required field" {
				t.Fatalf("\t%s\tTest 1:\tShould translate the message: %q", failed, fields["to"])
			}
			t.Logf("\t%s\tTest 1:\tShould translate the message.", success)
		}
	}
}
