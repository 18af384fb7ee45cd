package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goresample/utils"
)

// ReadAffine reads a world coordinate affine, four rows of four numbers in
// a text file. Lines starting with # or % are comments. A missing fourth
// row is taken to be [0 0 0 1].
func ReadAffine(fileName string) (A *mat.Dense, err error) {
	var file *os.File
	if file, err = os.Open(fileName); err != nil {
		return
	}
	defer file.Close()
	if A, err = readAffine(bufio.NewReader(file)); err != nil {
		err = fmt.Errorf("affine %s: %w", fileName, err)
	}
	return
}

func readAffine(reader *bufio.Reader) (A *mat.Dense, err error) {
	A = mat.NewDense(4, 4, nil)
	A.Set(3, 3, 1)
	for i := 0; i < 4; i++ {
		var line string
		if line, err = getLineNoComments(reader); err != nil {
			if err == io.EOF && i == 3 {
				return A, nil
			}
			if err == io.EOF {
				err = fmt.Errorf("%w: early end of file after %d rows", utils.ErrDimension, i)
			}
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, fmt.Errorf("%w: row %d has %d values, need 4", utils.ErrDimension, i, len(fields))
		}
		row := make([]float64, 4)
		for j, f := range fields {
			if _, err = fmt.Sscanf(f, "%g", &row[j]); err != nil {
				return nil, fmt.Errorf("%w: unable to read number from token: [%s]", utils.ErrInvalidInput, f)
			}
		}
		if utils.IsNan(row) {
			return nil, fmt.Errorf("%w: row %d has a NaN value", utils.ErrInvalidInput, i)
		}
		A.SetRow(i, row)
	}
	return
}

func WriteAffine(fileName string, A mat.Matrix) (err error) {
	var file *os.File
	if file, err = os.Create(fileName); err != nil {
		return
	}
	w := bufio.NewWriter(file)
	for i := 0; i < 4; i++ {
		fmt.Fprintf(w, "%.10g %.10g %.10g %.10g\n", A.At(i, 0), A.At(i, 1), A.At(i, 2), A.At(i, 3))
	}
	if err = w.Flush(); err != nil {
		file.Close()
		return
	}
	return file.Close()
}

// getLine returns io.EOF only when nothing remains, a last line without a
// newline is still returned.
func getLine(reader *bufio.Reader) (line string, err error) {
	line, err = reader.ReadString('\n')
	if err == io.EOF && len(line) != 0 {
		err = nil
	}
	line = strings.TrimRight(line, "\r\n")
	return
}

func getLineNoComments(reader *bufio.Reader) (line string, err error) {
	for {
		if line, err = getLine(reader); err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if len(line) != 0 && line[0] != '#' && line[0] != '%' {
			return
		}
	}
}
