package routing

// uniformMatrix returns an n x n matrix where travelling between any two
// distinct locations costs `unit` and staying at the same location costs 0.
func uniformMatrix(n int, unit int64) Matrix {
	m := NewMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				m.Set(i, j, unit)
			}
		}
	}
	return m
}

func simpleInput(nLocations int, travelUnit int64) *Input {
	return &Input{
		AmountDimension:  1,
		DurationMatrices: map[string]Matrix{"car": uniformMatrix(nLocations, travelUnit)},
		CostMatrices:     map[string]Matrix{"car": uniformMatrix(nLocations, travelUnit)},
		DistanceMatrices: map[string]Matrix{"car": uniformMatrix(nLocations, travelUnit)},
	}
}

func amt(v int64) Amount { return Amount{v} }

func singleJob(id, loc int, pickup int64, service int64, tw TimeWindow) Job {
	return Job{
		ID:             id,
		Type:           Single,
		LocationIndex:  loc,
		PickupAmount:   amt(pickup),
		DeliveryAmount: amt(0),
		DefaultService: service,
		TimeWindows:    []TimeWindow{tw},
	}
}

func basicVehicle(id int, capacity int64, tw TimeWindow) Vehicle {
	return Vehicle{
		ID:         id,
		Type:       "car",
		Profile:    "car",
		Capacity:   amt(capacity),
		TimeWindow: tw,
	}
}
