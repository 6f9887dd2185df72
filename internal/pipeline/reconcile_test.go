package pipeline

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"sheetetl/internal"
)

func TestReconcileColumns(t *testing.T) {
	cases := []struct {
		name    string
		headers []string
		wanted  []string
		want    []string
	}{
		{name: "suffixed duplicates", headers: []string{"Name", "Name_1", "Address"}, wanted: []string{"Name"}, want: []string{"Name", "Name_1"}},
		{name: "no match", headers: []string{"Name", "Name_1", "Address"}, wanted: []string{"Zip"}, want: []string{}},
		{name: "wanted order wins", headers: []string{"Address", "POSCode", "Lokasi"}, wanted: []string{"POSCode", "Lokasi", "Address"}, want: []string{"POSCode", "Lokasi", "Address"}},
		{name: "prefix matches longer header", headers: []string{"Timestamp", "Timestamp Upload"}, wanted: []string{"Timestamp"}, want: []string{"Timestamp", "Timestamp Upload"}},
		{name: "missing entries skipped", headers: []string{"Cons Code"}, wanted: []string{"Poscode Genesis", "Cons Code"}, want: []string{"Cons Code"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ReconcileColumns(tc.headers, tc.wanted)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestProject(t *testing.T) {
	table := internal.Table{
		Headers: []string{"A", "B", "C"},
		Rows:    [][]string{{"a1", "b1", "c1"}, {"a2", "b2", "c2"}},
	}
	got := Project(table, []string{"C", "A"})
	if !reflect.DeepEqual(got.Headers, []string{"C", "A"}) {
		t.Fatalf("headers=%q", got.Headers)
	}
	if !reflect.DeepEqual(got.Rows, [][]string{{"c1", "a1"}, {"c2", "a2"}}) {
		t.Fatalf("rows=%q", got.Rows)
	}
}

func TestNoColumnsError(t *testing.T) {
	err := error(&NoColumnsError{Available: []string{"Name", "Address"}})
	if !errors.Is(err, ErrNoColumnsMatched) {
		t.Fatal("expected ErrNoColumnsMatched")
	}
	if !strings.Contains(err.Error(), "Name, Address") {
		t.Fatalf("err=%v", err)
	}
}
