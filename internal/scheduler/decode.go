package scheduler

import (
	"github.com/fleetcore/telemetry-core/internal/types"
	"github.com/fleetcore/telemetry-core/internal/validator"
)

// decodeValue applies each PID's raw-byte decoding formula.
func decodeValue(code byte, raw []byte) float64 {
	switch code {
	case types.PIDEngineRPM.Code: // ((A*256)+B)/4
		if len(raw) < 2 {
			return 0
		}
		return (float64(raw[0])*256 + float64(raw[1])) / 4

	case types.PIDVehicleSpeed.Code: // A km/h
		if len(raw) < 1 {
			return 0
		}
		return float64(raw[0])

	case types.PIDCoolantTemp.Code: // A - 40 degrees C
		if len(raw) < 1 {
			return 0
		}
		return float64(raw[0]) - 40

	case types.PIDCalcLoad.Code: // A * 100 / 255 percent
		if len(raw) < 1 {
			return 0
		}
		return float64(raw[0]) * 100 / 255

	case types.PIDMAF.Code: // ((A*256)+B) / 100 g/s
		if len(raw) < 2 {
			return 0
		}
		return (float64(raw[0])*256 + float64(raw[1])) / 100

	case types.PIDSTFT1.Code, types.PIDLTFT1.Code: // (A-128)*100/128 percent
		if len(raw) < 1 {
			return 0
		}
		return (float64(raw[0]) - 128) * 100 / 128

	case types.PIDO2Voltage.Code: // A/200 volts -> mV below
		if len(raw) < 1 {
			return 0
		}
		return float64(raw[0]) / 200

	default:
		return 0
	}
}

// applyToFrame writes a decoded PID value into the shared current frame,
// marking its presence bit.
func applyToFrame(frame *types.SensorFrame, present *validator.Fields, code byte, value float64) {
	switch code {
	case types.PIDEngineRPM.Code:
		frame.RPM = uint16(value)
		*present |= validator.FieldPresentRPM
	case types.PIDVehicleSpeed.Code:
		frame.SpeedKmh = uint8(value)
		*present |= validator.FieldPresentSpeed
	case types.PIDCoolantTemp.Code:
		frame.CoolantC = int16(value)
		*present |= validator.FieldPresentCoolant
	case types.PIDCalcLoad.Code:
		frame.LoadPct = uint8(value)
		*present |= validator.FieldPresentLoad
	case types.PIDMAF.Code:
		frame.MAFx100 = uint16(value * 100)
		*present |= validator.FieldPresentMAF
	case types.PIDSTFT1.Code:
		frame.STFTx100 = int16(value * 100)
	case types.PIDLTFT1.Code:
		frame.LTFTx100 = int16(value * 100)
	case types.PIDO2Voltage.Code:
		frame.O2VoltageMv = uint16(value * 1000)
	}
}
