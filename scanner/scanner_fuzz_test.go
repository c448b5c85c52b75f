package scanner

import "testing"

func FuzzScanner(f *testing.F) {
	f.Add("<< /Type /Page >>")
	f.Add("[ 1 2 3 ]")
	f.Add("<< /Length 3 >> stream\nabc\nendstream")
	f.Add("(Hello (World))")
	f.Add("<AABBCC>")

	f.Fuzz(func(t *testing.T, text string) {
		s := New(text, Config{MaxNestingDepth: 10, MaxStringLength: 1024})
		for {
			if _, err := s.Next(); err != nil {
				break
			}
		}
		_ = Classify(text)
		_ = Normalize(text)
	})
}
