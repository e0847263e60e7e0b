package csvio

import (
	"encoding/csv"
	"io"
	"strings"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/okian/ritmo/internal/domain/model"
	"github.com/okian/ritmo/internal/domain/schema"
)

// WriteCSV writes records with a canonical header row.
func WriteCSV(w io.Writer, records []model.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(schema.Names()); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(r.Values()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ParquetColumn maps a canonical name to its Parquet column name.
func ParquetColumn(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

func parquetSchema() []string {
	names := schema.Names()
	md := make([]string, len(names))
	for i, n := range names {
		md[i] = "name=" + ParquetColumn(n) + ", type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"
	}
	return md
}

// MarshalParquet encodes records as a Snappy-compressed Parquet file with one
// UTF-8 column per canonical field.
func MarshalParquet(records []model.Record) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewCSVWriter(parquetSchema(), fw, 4)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, r := range records {
		vals := r.Values()
		row := make([]*string, len(vals))
		for i := range vals {
			row[i] = &vals[i]
		}
		if err := pw.WriteString(row); err != nil {
			_ = pw.WriteStop()
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}
