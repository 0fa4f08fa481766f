// Package fees computes the three-way money split between seller,
// platform and courier. All results are integers in minor currency
// units, re-derivable from their inputs for auditing.
package fees

import (
	"fmt"
	"math"
)

type DeliveryType string

const (
	PlatformCourier DeliveryType = "PLATFORM_COURIER"
	SellerDelivery  DeliveryType = "SELLER_DELIVERY"
)

// courierShare is the courier's fraction of a delivery fee. The platform
// cut is always total minus the courier cut, never rounded on its own.
const courierShare = 0.88

// platformRate is the flat platform fee on the product-sale total.
const platformRate = 0.12

// LongHaulThresholdKm is where the banded long-haul tariff takes over.
const LongHaulThresholdKm = 30.0

type tariff struct {
	baseFee int64
	perKm   int64
	freeKm  float64
}

var tariffs = map[DeliveryType]tariff{
	PlatformCourier: {baseFee: 250, perKm: 50, freeKm: 3},
	SellerDelivery:  {baseFee: 300, perKm: 60, freeKm: 5},
}

// longHaulBands price chargeable kilometers at a decreasing fraction of
// the tariff per-km rate. UpToKm bounds are measured on raw distance.
var longHaulBands = []struct {
	upToKm float64
	rate   float64
}{
	{30, 1.00},
	{60, 0.80},
	{120, 0.60},
	{math.Inf(1), 0.40},
}

type BreakdownLine struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

type DeliveryFee struct {
	BaseFee     int64           `json:"base_fee"`
	DistanceFee int64           `json:"distance_fee"`
	Total       int64           `json:"total"`
	CourierCut  int64           `json:"courier_cut"`
	PlatformCut int64           `json:"platform_cut"`
	Breakdown   []BreakdownLine `json:"breakdown"`
}

// ComputeDeliveryFee prices a delivery leg with the flat per-km tariff.
// Distances above LongHaulThresholdKm are delegated to the banded
// long-haul tariff.
func ComputeDeliveryFee(distanceKm float64, deliveryType DeliveryType) (*DeliveryFee, error) {
	trf, err := tariffFor(distanceKm, deliveryType)
	if err != nil {
		return nil, err
	}
	if distanceKm > LongHaulThresholdKm {
		return ComputeLongHaulFee(distanceKm, deliveryType)
	}

	chargeable := math.Max(0, distanceKm-trf.freeKm)
	distanceFee := roundHalfAway(chargeable * float64(trf.perKm))
	return assemble(trf.baseFee, distanceFee), nil
}

// ComputeLongHaulFee prices a delivery leg with four distance bands at
// decreasing per-km rates. Band amounts accumulate as one raw value and
// are rounded once, so no derived field is re-rounded.
func ComputeLongHaulFee(distanceKm float64, deliveryType DeliveryType) (*DeliveryFee, error) {
	trf, err := tariffFor(distanceKm, deliveryType)
	if err != nil {
		return nil, err
	}

	raw := 0.0
	covered := trf.freeKm // free distance consumes the cheapest-first band start
	for _, band := range longHaulBands {
		if covered >= distanceKm {
			break
		}
		upper := math.Min(band.upToKm, distanceKm)
		if upper <= covered {
			continue
		}
		raw += (upper - covered) * float64(trf.perKm) * band.rate
		covered = upper
	}

	distanceFee := roundHalfAway(raw)
	return assemble(trf.baseFee, distanceFee), nil
}

// ComputePlatformFee splits a product-sale total into the flat 12%
// platform fee and the seller net. The net is computed by subtraction so
// the two sides always sum exactly to the total.
func ComputePlatformFee(orderTotal int64) (platformFee, sellerNet int64, err error) {
	if orderTotal < 0 {
		return 0, 0, fmt.Errorf("order total must be non-negative, got %d", orderTotal)
	}
	platformFee = roundHalfAway(float64(orderTotal) * platformRate)
	sellerNet = orderTotal - platformFee
	return platformFee, sellerNet, nil
}

func tariffFor(distanceKm float64, deliveryType DeliveryType) (tariff, error) {
	if math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) {
		return tariff{}, fmt.Errorf("distance must be finite, got %f", distanceKm)
	}
	if distanceKm < 0 {
		return tariff{}, fmt.Errorf("distance must be non-negative, got %f", distanceKm)
	}
	trf, ok := tariffs[deliveryType]
	if !ok {
		return tariff{}, fmt.Errorf("unknown delivery type %q", deliveryType)
	}
	return trf, nil
}

func assemble(baseFee, distanceFee int64) *DeliveryFee {
	total := baseFee + distanceFee
	courierCut := roundHalfAway(float64(total) * courierShare)
	platformCut := total - courierCut

	return &DeliveryFee{
		BaseFee:     baseFee,
		DistanceFee: distanceFee,
		Total:       total,
		CourierCut:  courierCut,
		PlatformCut: platformCut,
		Breakdown: []BreakdownLine{
			{Label: "base_fee", Amount: baseFee},
			{Label: "distance_fee", Amount: distanceFee},
			{Label: "courier_cut", Amount: courierCut},
			{Label: "platform_cut", Amount: platformCut},
		},
	}
}

// roundHalfAway rounds to the nearest minor unit, halves away from zero.
func roundHalfAway(x float64) int64 {
	if x >= 0 {
		return int64(math.Floor(x + 0.5))
	}
	return int64(math.Ceil(x - 0.5))
}
