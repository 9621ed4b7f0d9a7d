package record

import "github.com/calebcase/wlf/schema"

// get returns the logical value of field id.
func get(p *Point, id schema.FieldID) float64 {
	switch id {
	case schema.TvSec:
		return float64(p.Seconds)
	case schema.TvNsec:
		return float64(p.Nanoseconds)
	case schema.X:
		return p.X
	case schema.Y:
		return p.Y
	case schema.Z:
		return p.Z
	case schema.HorizontalUncertainty:
		return p.HorizontalUncertainty
	case schema.VerticalUncertainty:
		return p.VerticalUncertainty
	case schema.SensorX:
		return p.SensorX
	case schema.SensorY:
		return p.SensorY
	case schema.SensorZ:
		return p.SensorZ
	case schema.SensorRoll:
		return p.SensorRoll
	case schema.SensorPitch:
		return p.SensorPitch
	case schema.SensorHeading:
		return p.SensorHeading
	case schema.ScanAngle:
		return p.ScanAngle
	case schema.NadirAngle:
		return p.NadirAngle
	case schema.WaterSurface:
		return p.WaterSurface
	case schema.ZOffset:
		return p.ZOffset
	case schema.NumberOfReturns:
		return float64(p.NumberOfReturns)
	case schema.ReturnNumber:
		return float64(p.ReturnNumber)
	case schema.PointSource:
		return float64(p.PointSource)
	case schema.EdgeOfFlightLine:
		return float64(p.EdgeOfFlightLine)
	case schema.Intensity:
		return p.Intensity
	case schema.Red, schema.Green, schema.Blue:
		return float64(p.RGB[id-schema.Red])
	case schema.Reflectance:
		return p.Reflectance
	case schema.Classification:
		return float64(p.Classification)
	case schema.Status:
		return float64(p.Status)
	case schema.WaveformAddress:
		return float64(p.WaveformAddress)
	case schema.WaveformPoint:
		return float64(p.WaveformPoint)
	}

	if id >= schema.Attribute0 && id <= schema.Attribute9 {
		return p.Attributes[id-schema.Attribute0]
	}

	return 0
}

// set stores the logical value v into field id.
func set(p *Point, id schema.FieldID, v float64) {
	switch id {
	case schema.TvSec:
		p.Seconds = uint32(v)
	case schema.TvNsec:
		p.Nanoseconds = uint32(v)
	case schema.X:
		p.X = v
	case schema.Y:
		p.Y = v
	case schema.Z:
		p.Z = v
	case schema.HorizontalUncertainty:
		p.HorizontalUncertainty = v
	case schema.VerticalUncertainty:
		p.VerticalUncertainty = v
	case schema.SensorX:
		p.SensorX = v
	case schema.SensorY:
		p.SensorY = v
	case schema.SensorZ:
		p.SensorZ = v
	case schema.SensorRoll:
		p.SensorRoll = v
	case schema.SensorPitch:
		p.SensorPitch = v
	case schema.SensorHeading:
		p.SensorHeading = v
	case schema.ScanAngle:
		p.ScanAngle = v
	case schema.NadirAngle:
		p.NadirAngle = v
	case schema.WaterSurface:
		p.WaterSurface = v
	case schema.ZOffset:
		p.ZOffset = v
	case schema.NumberOfReturns:
		p.NumberOfReturns = uint32(v)
	case schema.ReturnNumber:
		p.ReturnNumber = uint32(v)
	case schema.PointSource:
		p.PointSource = uint32(v)
	case schema.EdgeOfFlightLine:
		p.EdgeOfFlightLine = int8(v)
	case schema.Intensity:
		p.Intensity = v
	case schema.Red, schema.Green, schema.Blue:
		p.RGB[id-schema.Red] = uint32(v)
	case schema.Reflectance:
		p.Reflectance = v
	case schema.Classification:
		p.Classification = uint8(v)
	case schema.Status:
		p.Status = Status(v)
	case schema.WaveformAddress:
		p.WaveformAddress = uint64(v)
	case schema.WaveformPoint:
		p.WaveformPoint = uint32(v)
	default:
		if id >= schema.Attribute0 && id <= schema.Attribute9 {
			p.Attributes[id-schema.Attribute0] = v
		}
	}
}
