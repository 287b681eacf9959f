//go:build tinygo && baremetal

package hal

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/bmp280"
	"tinygo.org/x/drivers/lsm303agr"
	"tinygo.org/x/drivers/mpu6050"
	"tinygo.org/x/drivers/ssd1306"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// Sensor axes are taken as mounted flight-frame aligned (X forward, Y right,
// Z down). A different board orientation is remapped here, not in the filter.

type mpuIMU struct {
	dev mpu6050.Device
	ok  bool
}

func newMPU6050(bus drivers.I2C) *mpuIMU {
	d := mpu6050.New(bus)
	err := d.Configure()
	return &mpuIMU{dev: d, ok: err == nil}
}

func (m *mpuIMU) ReadIMU() (IMUSample, error) {
	if !m.ok {
		return IMUSample{}, ErrNotImplemented
	}
	gx, gy, gz := m.dev.ReadRotation()     // µ°/s
	ax, ay, az := m.dev.ReadAcceleration() // µg
	return IMUSample{
		Gyro:  [3]float32{float32(gx) * 1e-6, float32(gy) * 1e-6, float32(gz) * 1e-6},
		Accel: [3]float32{float32(ax) * 1e-6, float32(ay) * 1e-6, float32(az) * 1e-6},
	}, nil
}

type bmpBaro struct {
	dev bmp280.Device
	ok  bool
}

func newBMP280(bus drivers.I2C) *bmpBaro {
	d := bmp280.New(bus)
	d.Configure(bmp280.STANDBY_63MS, bmp280.FILTER_4X, bmp280.SAMPLING_16X, bmp280.SAMPLING_2X, bmp280.MODE_NORMAL)
	return &bmpBaro{dev: d, ok: d.Connected()}
}

func (b *bmpBaro) ReadPressure() (float32, error) {
	if !b.ok {
		return 0, ErrNotImplemented
	}
	p, err := b.dev.ReadPressure() // milliPa
	if err != nil {
		return 0, err
	}
	return float32(p) / 1000, nil
}

type lsmMag struct {
	dev lsm303agr.Device
	ok  bool
}

func newLSM303(bus drivers.I2C) *lsmMag {
	d := lsm303agr.New(bus)
	err := d.Configure(lsm303agr.Configuration{})
	return &lsmMag{dev: d, ok: err == nil}
}

func (m *lsmMag) ReadField() (x, y, z float32, err error) {
	if !m.ok {
		return 0, 0, 0, ErrNotImplemented
	}
	mx, my, mz, err := m.dev.ReadMagneticField() // nT
	if err != nil {
		return 0, 0, 0, err
	}
	return float32(mx) / 1000, float32(my) / 1000, float32(mz) / 1000, nil
}

// oledStatus renders the status rows on a 128x64 SSD1306. WriteLine only
// touches the buffer; Display pushes the frame, so the I2C cost lands once
// per status refresh.
type oledStatus struct {
	dev  ssd1306.Device
	rows [4]string
	ok   bool
}

var statusFont = &proggy.TinySZ8pt7b

func newOLEDStatus(bus drivers.I2C) *oledStatus {
	d := ssd1306.NewI2C(bus)
	d.Configure(ssd1306.Config{Address: 0x3C, Width: 128, Height: 64})
	d.ClearDisplay()
	return &oledStatus{dev: d, ok: true}
}

func (o *oledStatus) WriteLine(row int, s string) {
	if row >= 0 && row < len(o.rows) {
		o.rows[row] = s
	}
}

func (o *oledStatus) Display() {
	if !o.ok {
		return
	}
	o.dev.ClearBuffer()
	white := color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	for i, s := range o.rows {
		if s == "" {
			continue
		}
		tinyfont.WriteLine(&o.dev, statusFont, 2, int16(12+i*16), s, white)
	}
	o.dev.Display()
}
