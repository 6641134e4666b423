package storage

import "testing"

func TestSplitS3URI(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{name: "simple", uri: "s3://corpus/graphs.json", wantBucket: "corpus", wantKey: "graphs.json"},
		{name: "nested key", uri: "s3://corpus/webnlg/train/graphs.json", wantBucket: "corpus", wantKey: "webnlg/train/graphs.json"},
		{name: "no key", uri: "s3://corpus", wantErr: true},
		{name: "empty key", uri: "s3://corpus/", wantErr: true},
		{name: "wrong scheme", uri: "https://corpus/graphs.json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, key, err := SplitS3URI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitS3URI(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			}
			if bucket != tt.wantBucket || key != tt.wantKey {
				t.Fatalf("SplitS3URI(%q) = %q, %q", tt.uri, bucket, key)
			}
		})
	}
}
