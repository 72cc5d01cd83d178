package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultCommissionRates_Valid(t *testing.T) {
	assert.NoError(t, validateCommissionRates(DefaultCommissionRates()))
}

func TestValidateCommissionRates_MissingPartnerRate(t *testing.T) {
	rates := DefaultCommissionRates()
	delete(rates.DcrPerKw, "ddp")
	assert.Error(t, validateCommissionRates(rates))

	rates = DefaultCommissionRates()
	delete(rates.InverterPerUnit, "bdp")
	assert.Error(t, validateCommissionRates(rates))
}

func TestValidateCommissionRates_BadIncentiveDefaults(t *testing.T) {
	rates := DefaultCommissionRates()
	rates.Incentive.TargetInstallations = 0
	assert.Error(t, validateCommissionRates(rates))

	rates = DefaultCommissionRates()
	rates.Incentive.BonusAmount = -1
	assert.Error(t, validateCommissionRates(rates))
}

func TestStaticRatesHolder_SnapshotIsStable(t *testing.T) {
	holder := NewStaticRatesHolder(DefaultCommissionRates())

	snapshot := holder.Current()
	assert.Equal(t, int64(9000), snapshot.DcrFixed["ddp"]["3"])

	updated := DefaultCommissionRates()
	updated.DcrFixed["ddp"]["3"] = 9500
	holder.current.Store(updated)

	assert.Equal(t, int64(9500), holder.Current().DcrFixed["ddp"]["3"])
}
