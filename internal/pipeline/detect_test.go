package pipeline

import "testing"

func TestDetectMemberExport(t *testing.T) {
	cases := []struct {
		name        string
		subject     string
		attachments []string
		headers     []string
		want        bool
	}{
		{
			name:        "weekly export with csv",
			subject:     "Weekly member export",
			attachments: []string{"members.csv"},
			want:        true,
		},
		{
			name:    "recognized headers only",
			subject: "fwd: fwd: data",
			headers: []string{"Badge", "Home Facility", "Email"},
			want:    true,
		},
		{
			name:        "newsletter",
			subject:     "April climbing newsletter",
			attachments: []string{"poster.png"},
			want:        false,
		},
		{
			name: "empty message",
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectMemberExport(tc.subject, tc.attachments, tc.headers)
			if got.IsExport != tc.want {
				t.Fatalf("IsExport = %v (score %.2f), want %v", got.IsExport, got.Score, tc.want)
			}
		})
	}
}
