package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeVehicle(t *testing.T) {
	assert.Equal(t, VehicleNone, NormalizeVehicle(""))
	assert.Equal(t, VehicleNone, NormalizeVehicle("  none "))
	assert.Equal(t, VehicleNone, NormalizeVehicle("Ninguno"))
	assert.Equal(t, VehicleMotorcycle, NormalizeVehicle("moto"))
	assert.Equal(t, VehicleMotorcycle, NormalizeVehicle("Motorbike"))
	assert.Equal(t, VehicleCar, NormalizeVehicle("car"))
	// Anything unrecognized charges as a car rather than slipping free.
	assert.Equal(t, VehicleCar, NormalizeVehicle("camioneta"))
}

func TestMergeVehicle(t *testing.T) {
	assert.Equal(t, VehicleCar, MergeVehicle(VehicleCar, VehicleMotorcycle))
	assert.Equal(t, VehicleCar, MergeVehicle(VehicleNone, VehicleCar))
	assert.Equal(t, VehicleMotorcycle, MergeVehicle(VehicleMotorcycle, VehicleNone))
	assert.Equal(t, VehicleNone, MergeVehicle(VehicleNone, VehicleNone))
}

func TestIsAtRisk(t *testing.T) {
	assert.True(t, IsAtRisk(30, true, ""))
	assert.True(t, IsAtRisk(65, false, ""))
	assert.True(t, IsAtRisk(20, false, "asma"))
	assert.False(t, IsAtRisk(64, false, "   "))
	assert.False(t, IsAtRisk(30, false, ""))
}
