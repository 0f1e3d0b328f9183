package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveInsights(t *testing.T) {
	in := DeriveInsights(threeDays())

	assert.Equal(t, "2.83", in.AvgDailyRevenue.Value.StringFixed(2))
	assert.Equal(t, "2.83", in.AvgTransaction.Value.StringFixed(2))
	require.True(t, in.TopProduct.Valid)
	assert.Equal(t, "Coffee", in.TopProduct.Value.Name)
	assert.Equal(t, "4.00", in.TopProduct.Value.Sum.StringFixed(2))
	assert.Equal(t, Some(8), in.PeakHour)
	require.True(t, in.TopLocation.Valid)
	assert.Equal(t, "In-store", in.TopLocation.Value.Name)
	assert.Equal(t, "5.50", in.TopLocation.Value.Sum.StringFixed(2))
	assert.Equal(t, Some("Cash"), in.PreferredPayment)

	md := in.Markdown()
	assert.Contains(t, md, "- Average daily revenue is $2.83\n")
	assert.Contains(t, md, "- 'Coffee' is the highest-grossing product with $4.00 in sales\n")
	assert.Contains(t, md, "- Peak sales hour is 8:00 with highest revenue generation\n")
	assert.Contains(t, md, "- 'In-store' is the best-performing location with $5.50 in revenue\n")
	assert.Contains(t, md, "- 'Cash' is the most preferred payment method among customers\n")
}

func TestDeriveInsights_Ties(t *testing.T) {
	ds := NewDataset([]Record{
		rec("2023-01-02 14:00", "Tea", "5", "Cash", "B"),
		rec("2023-01-02 09:00", "Cake", "5", "Card", "A"),
		rec("2023-01-03 20:00", "", "", "", ""),
	})
	in := DeriveInsights(ds)

	assert.Equal(t, "Cake", in.TopProduct.Value.Name, "equal sums go to the first name")
	assert.Equal(t, "A", in.TopLocation.Value.Name)
	assert.Equal(t, Some(9), in.PeakHour, "equal hours go to the earliest")
	assert.Equal(t, Some("Card"), in.PreferredPayment)
	assert.Equal(t, "5.00", in.AvgDailyRevenue.Value.StringFixed(2), "days without amounts count as zero")
	assert.Equal(t, "5.00", in.AvgTransaction.Value.StringFixed(2))
}

func TestDeriveInsights_MissingGroupsNeverLead(t *testing.T) {
	ds := NewDataset([]Record{
		rec("2023-01-02 10:00", "", "50", "Cash", ""),
		rec("2023-01-02 11:00", "Tea", "2", "Cash", "Takeaway"),
	})
	in := DeriveInsights(ds)
	assert.Equal(t, "Tea", in.TopProduct.Value.Name)
	assert.Equal(t, "Takeaway", in.TopLocation.Value.Name)
	assert.Equal(t, "26.00", in.AvgTransaction.Value.StringFixed(2))
}

func TestDeriveInsights_Empty(t *testing.T) {
	for name, ds := range map[string]*Dataset{
		"no records": NewDataset(nil),
		"no amounts": NewDataset([]Record{rec("2023-01-02 10:00", "", "", "", "")}),
	} {
		t.Run(name, func(t *testing.T) {
			in := DeriveInsights(ds)
			assert.False(t, in.AvgTransaction.Valid)
			assert.False(t, in.TopProduct.Valid)
			assert.False(t, in.PeakHour.Valid)
			assert.False(t, in.TopLocation.Valid)
			assert.False(t, in.PreferredPayment.Valid)
		})
	}
	assert.Equal(t, "[INSIGHTS]\n- no sales\n", DeriveInsights(NewDataset(nil)).Markdown())
}

func TestBuildReport_Insights(t *testing.T) {
	ds := threeDays()
	rep, err := BuildReport(context.Background(), ds)
	require.NoError(t, err)
	assert.Equal(t, ds.ID(), rep.Insights.DatasetID)
	assert.Equal(t, DeriveInsights(ds).Markdown(), rep.Insights.Markdown())
	assert.Contains(t, rep.Markdown(3), "[INSIGHTS]\n- Average daily revenue is $2.83\n")
}
