package header

import "testing"

func TestParseHeartBeatValid(t *testing.T) {
	hb, err := ParseHeartBeat("1000,2000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hb.Cx != 1000 || hb.Cy != 2000 {
		t.Errorf("got %+v, want {1000 2000}", hb)
	}
	if hb.String() != "1000,2000" {
		t.Errorf("String() = %q, want %q", hb.String(), "1000,2000")
	}
}

func TestParseHeartBeatRejectsMalformed(t *testing.T) {
	cases := []string{"1000", "1000,2000,3000", "a,b", "-1,0", "1000,", ""}
	for _, c := range cases {
		if _, err := ParseHeartBeat(c); err == nil {
			t.Errorf("ParseHeartBeat(%q) succeeded, want error", c)
		}
	}
}

func TestContentLengthAbsent(t *testing.T) {
	n, present, err := ContentLength(nil)
	if present || err != nil || n != 0 {
		t.Errorf("ContentLength(nil) = (%d, %v, %v), want (0, false, nil)", n, present, err)
	}
}

func TestContentLengthMalformedIsError(t *testing.T) {
	l := List{New(NameContentLength, "not-a-number")}
	_, present, err := ContentLength(l)
	if !present || err == nil {
		t.Errorf("ContentLength with malformed value: present=%v err=%v, want present=true err!=nil", present, err)
	}
}

func TestContentLengthZero(t *testing.T) {
	l := List{New(NameContentLength, "0")}
	n, present, err := ContentLength(l)
	if !present || err != nil || n != 0 {
		t.Errorf("ContentLength(0) = (%d, %v, %v), want (0, true, nil)", n, present, err)
	}
}

func TestHeartBeatOfMissing(t *testing.T) {
	_, present, err := HeartBeatOf(nil)
	if present || err != nil {
		t.Errorf("HeartBeatOf(nil) = (_, %v, %v), want (_, false, nil)", present, err)
	}
}
