// Package solar computes apparent sun position using the NOAA solar
// calculator formulas. Accuracy is within a fraction of a degree, which is
// far below the granularity shade classification needs.
package solar

import (
	"math"
	"time"
)

// Position is the sun's location in the sky: azimuth in degrees clockwise
// from true north, elevation in degrees above the horizon.
type Position struct {
	AzimuthDeg   float64
	ElevationDeg float64
}

// Night reports whether the sun is at or below the horizon.
func (p Position) Night() bool {
	return p.ElevationDeg <= 0
}

// At returns the sun position for a timestamp and location.
func At(t time.Time, latDeg, lonDeg float64) Position {
	utc := t.UTC()

	// Julian day from Unix time, then Julian century since J2000.
	jd := float64(utc.Unix())/86400.0 + 2440587.5
	jc := (jd - 2451545.0) / 36525.0

	geomMeanLonSun := math.Mod(280.46646+jc*(36000.76983+jc*0.0003032), 360)
	geomMeanAnomSun := 357.52911 + jc*(35999.05029-0.0001537*jc)
	eccentEarthOrbit := 0.016708634 - jc*(0.000042037+0.0000001267*jc)

	sunEqOfCtr := math.Sin(rad(geomMeanAnomSun))*(1.914602-jc*(0.004817+0.000014*jc)) +
		math.Sin(rad(2*geomMeanAnomSun))*(0.019993-0.000101*jc) +
		math.Sin(rad(3*geomMeanAnomSun))*0.000289

	sunTrueLon := geomMeanLonSun + sunEqOfCtr
	sunAppLon := sunTrueLon - 0.00569 - 0.00478*math.Sin(rad(125.04-1934.136*jc))

	meanObliqEcliptic := 23.0 + (26.0+(21.448-jc*(46.815+jc*(0.00059-jc*0.001813)))/60.0)/60.0
	obliqCorr := meanObliqEcliptic + 0.00256*math.Cos(rad(125.04-1934.136*jc))

	declination := deg(math.Asin(math.Sin(rad(obliqCorr)) * math.Sin(rad(sunAppLon))))

	varY := math.Tan(rad(obliqCorr/2)) * math.Tan(rad(obliqCorr/2))
	eqOfTimeMin := 4 * deg(varY*math.Sin(2*rad(geomMeanLonSun))-
		2*eccentEarthOrbit*math.Sin(rad(geomMeanAnomSun))+
		4*eccentEarthOrbit*varY*math.Sin(rad(geomMeanAnomSun))*math.Cos(2*rad(geomMeanLonSun))-
		0.5*varY*varY*math.Sin(4*rad(geomMeanLonSun))-
		1.25*eccentEarthOrbit*eccentEarthOrbit*math.Sin(2*rad(geomMeanAnomSun)))

	minutesUTC := float64(utc.Hour())*60 + float64(utc.Minute()) + float64(utc.Second())/60
	trueSolarTimeMin := math.Mod(minutesUTC+eqOfTimeMin+4*lonDeg, 1440)
	if trueSolarTimeMin < 0 {
		trueSolarTimeMin += 1440
	}

	hourAngle := trueSolarTimeMin/4 - 180

	lat := rad(latDeg)
	decl := rad(declination)
	zenith := deg(math.Acos(math.Sin(lat)*math.Sin(decl) +
		math.Cos(lat)*math.Cos(decl)*math.Cos(rad(hourAngle))))
	elevation := 90 - zenith

	// Sun directly overhead: azimuth is undefined, pick south.
	if math.Sin(rad(zenith)) < 1e-9 {
		return Position{AzimuthDeg: 180, ElevationDeg: elevation}
	}

	var azimuth float64
	cosAz := (math.Sin(lat)*math.Cos(rad(zenith)) - math.Sin(decl)) /
		(math.Cos(lat) * math.Sin(rad(zenith)))
	cosAz = math.Max(-1, math.Min(1, cosAz))
	if hourAngle > 0 {
		azimuth = math.Mod(deg(math.Acos(cosAz))+180, 360)
	} else {
		azimuth = math.Mod(540-deg(math.Acos(cosAz)), 360)
	}

	return Position{AzimuthDeg: azimuth, ElevationDeg: elevation}
}

func rad(d float64) float64 { return d * math.Pi / 180 }

func deg(r float64) float64 { return r * 180 / math.Pi }
