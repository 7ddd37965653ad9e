package testsupport_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formrows/pkg/plan"
	"github.com/goliatone/go-formrows/pkg/testsupport"
)

func TestProfileFixture_WireNames(t *testing.T) {
	s := testsupport.LoadSchema(t, testsupport.ProfileFixture)

	want := []string{"name", "age", "bio", "shippingOptionsenabled", "shippingcountry", "shippingzip"}
	if diff := cmp.Diff(want, plan.CollectNames(s)); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}
