package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fraudscope/pkg/contracts/domain"
)

// SampleTransactionLines are JSON lines shaped like the raw transactions dataset
var SampleTransactionLines = []string{
	`{"accountNumber":"737265056","customerId":"737265056","creditLimit":5000,"availableMoney":5000.0,"transactionDateTime":"2016-08-13T14:27:32","transactionAmount":98.55,"merchantName":"Uber","acqCountry":"US","merchantCategoryCode":"rideshare","echoBuffer":"","cardPresent":false,"isFraud":false}`,
	`{"accountNumber":"737265056","customerId":"737265056","creditLimit":5000,"availableMoney":5000.0,"transactionDateTime":"2016-10-11T05:05:54","transactionAmount":74.51,"merchantName":"AMC #191138","acqCountry":"US","merchantCategoryCode":"entertainment","echoBuffer":"","cardPresent":true,"isFraud":false}`,
	`{"accountNumber":"737265056","customerId":"737265056","creditLimit":5000,"availableMoney":5000.0,"transactionDateTime":"2016-11-08T09:18:39","transactionAmount":7.47,"merchantName":"Play Store","acqCountry":"US","merchantCategoryCode":"mobileapps","echoBuffer":" ","cardPresent":false,"isFraud":false}`,
	`{"accountNumber":"830329091","customerId":"830329091","creditLimit":5000,"availableMoney":5000.0,"transactionDateTime":"2016-12-10T02:14:50","transactionAmount":7.47,"merchantName":"Play Store","acqCountry":"","merchantCategoryCode":"mobileapps","echoBuffer":"","cardPresent":false,"isFraud":true}`,
}

// WriteJSONLines writes lines to name inside a temporary directory and returns the path
func WriteJSONLines(t *testing.T, name string, lines ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}
	return path
}

// RegionFraudTable builds the ten-row table used by the group rate scenario:
// region A has 1 fraud out of 6, region B has 2 out of 4.
func RegionFraudTable(t *testing.T) *domain.Table {
	t.Helper()

	regions := []string{"A", "A", "A", "A", "A", "A", "B", "B", "B", "B"}
	fraud := []bool{true, false, false, false, false, false, true, true, false, false}

	regionValues := make([]domain.Value, len(regions))
	fraudValues := make([]domain.Value, len(fraud))
	for i := range regions {
		regionValues[i] = domain.StringValue(regions[i])
		fraudValues[i] = domain.BoolValue(fraud[i])
	}

	return MustTable(t, map[string][]domain.Value{
		"region":  regionValues,
		"isFraud": fraudValues,
	}, "region", "isFraud")
}

// MustTable builds a table from columns added in the given order
func MustTable(t *testing.T, columns map[string][]domain.Value, order ...string) *domain.Table {
	t.Helper()

	tbl := domain.NewTable()
	for _, name := range order {
		if err := tbl.AddColumn(name, columns[name]); err != nil {
			t.Fatalf("failed to build table: %v", err)
		}
	}
	return tbl
}

// Strings converts raw strings into string cells
func Strings(values ...string) []domain.Value {
	out := make([]domain.Value, len(values))
	for i, v := range values {
		out[i] = domain.StringValue(v)
	}
	return out
}
