// Command bblog dumps a blackbox flight log as human-readable lines or CSV.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"kestrel/fc/blackbox"
)

func main() {
	csv := flag.Bool("csv", false, "Emit CSV instead of aligned text.")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: bblog [-csv] <logfile>")
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer f.Close()

	if err := dump(f, os.Stdout, *csv); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func dump(r io.Reader, w io.Writer, csv bool) error {
	out := bufio.NewWriter(w)
	defer out.Flush()

	if csv {
		fmt.Fprintln(out, "seq,time_us,roll_cdeg,pitch_cdeg,yaw_cdeg,gyro_x,gyro_y,gyro_z,m0,m1,m2,m3,armed")
	}

	var (
		buf     [blackbox.RecordSize]byte
		lastSeq uint32
		n       int
		bad     int
	)
	br := bufio.NewReader(r)
	for {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			if err == io.EOF {
				break
			}
			if err == io.ErrUnexpectedEOF {
				bad++
				break
			}
			return err
		}
		rec, err := blackbox.Decode(buf[:])
		if err != nil {
			bad++
			continue
		}
		if n > 0 && rec.Seq != lastSeq+1 {
			fmt.Fprintf(out, "# gap: seq %d -> %d\n", lastSeq, rec.Seq)
		}
		lastSeq = rec.Seq
		n++

		armed := 0
		if rec.Armed {
			armed = 1
		}
		if csv {
			fmt.Fprintf(out, "%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d\n",
				rec.Seq, rec.TimeMicros, rec.Roll, rec.Pitch, rec.Yaw,
				rec.Gyro[0], rec.Gyro[1], rec.Gyro[2],
				rec.Motors[0], rec.Motors[1], rec.Motors[2], rec.Motors[3], armed)
			continue
		}
		fmt.Fprintf(out, "%6d t=%10dus att=%+7.2f/%+7.2f/%+7.2f gyro=%+6.1f/%+6.1f/%+6.1f m=%4d %4d %4d %4d armed=%d\n",
			rec.Seq, rec.TimeMicros,
			float32(rec.Roll)/100, float32(rec.Pitch)/100, float32(rec.Yaw)/100,
			float32(rec.Gyro[0])/10, float32(rec.Gyro[1])/10, float32(rec.Gyro[2])/10,
			rec.Motors[0], rec.Motors[1], rec.Motors[2], rec.Motors[3], armed)
	}

	fmt.Fprintf(out, "# %d records", n)
	if bad > 0 {
		fmt.Fprintf(out, ", %d bad", bad)
	}
	fmt.Fprintln(out)
	return nil
}
