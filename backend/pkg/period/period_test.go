package period

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/chrissi82/Dashboard-IU/backend/pkg/errors"
)

func TestSplit_OctoberStart(t *testing.T) {
	segments, err := Split(Date(2023, 10, 1), Date(2025, 3, 31))
	require.NoError(t, err)

	want := []Segment{
		{Start: Date(2023, 10, 1), End: Date(2023, 12, 31)},
		{Start: Date(2024, 1, 1), End: Date(2024, 6, 30)},
		{Start: Date(2024, 7, 1), End: Date(2024, 12, 31)},
		{Start: Date(2025, 1, 1), End: Date(2025, 3, 31)},
	}
	assert.Equal(t, want, segments)
}

func TestSplit_TwoYearProgram(t *testing.T) {
	segments, err := Split(Date(2023, 9, 1), Date(2025, 8, 31))
	require.NoError(t, err)

	require.Len(t, segments, 5)
	assert.Equal(t, Segment{Start: Date(2023, 9, 1), End: Date(2023, 12, 31)}, segments[0])
	assert.Equal(t, Segment{Start: Date(2025, 7, 1), End: Date(2025, 8, 31)}, segments[4])
}

func TestSplit_EndOnBoundary(t *testing.T) {
	segments, err := Split(Date(2024, 1, 1), Date(2024, 6, 30))
	require.NoError(t, err)
	assert.Equal(t, []Segment{{Start: Date(2024, 1, 1), End: Date(2024, 6, 30)}}, segments)
}

func TestSplit_StartOnJune30(t *testing.T) {
	segments, err := Split(Date(2024, 6, 30), Date(2024, 7, 2))
	require.NoError(t, err)
	assert.Equal(t, []Segment{
		{Start: Date(2024, 6, 30), End: Date(2024, 6, 30)},
		{Start: Date(2024, 7, 1), End: Date(2024, 7, 2)},
	}, segments)
}

func TestSplit_InvalidRange(t *testing.T) {
	d := Date(2024, 3, 1)

	_, err := Split(d, d)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidRange), "相同日期应返回 ErrInvalidRange，实际: %v", err)

	_, err = Split(d, d.AddDate(0, 0, -1))
	assert.True(t, errors.Is(err, apperrors.ErrInvalidRange), "结束早于开始应返回 ErrInvalidRange，实际: %v", err)
}

func TestSplit_IgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2024, 2, 1, 23, 30, 0, 0, time.UTC)
	end := time.Date(2024, 2, 29, 1, 0, 0, 0, time.UTC)

	segments, err := Split(start, end)
	require.NoError(t, err)
	assert.Equal(t, []Segment{{Start: Date(2024, 2, 1), End: Date(2024, 2, 29)}}, segments)
}

// 任意合法区间：区间连续、不重叠、并集恰好覆盖 [start, end]，
// 除最后一个外均结束于 6/30 或 12/31。
func TestSplit_CoversRangeContiguously(t *testing.T) {
	base := Date(2019, 1, 1)
	for offset := 0; offset < 400; offset += 7 {
		for length := 1; length < 1500; length += 53 {
			start := base.AddDate(0, 0, offset)
			end := start.AddDate(0, 0, length)

			segments, err := Split(start, end)
			require.NoError(t, err)
			require.NotEmpty(t, segments)

			assert.Equal(t, start, segments[0].Start)
			assert.Equal(t, end, segments[len(segments)-1].End)

			total := 0
			for i, seg := range segments {
				assert.False(t, seg.End.Before(seg.Start), "区间 %s 终点早于起点", seg)
				total += seg.Days()
				if i > 0 {
					assert.Equal(t, segments[i-1].End.AddDate(0, 0, 1), seg.Start, "区间 %d 不连续", i)
				}
				if i < len(segments)-1 {
					m, d := seg.End.Month(), seg.End.Day()
					assert.True(t, (m == time.June && d == 30) || (m == time.December && d == 31),
						"区间 %s 未在半年边界结束", seg)
				}
			}
			assert.Equal(t, Segment{Start: start, End: end}.Days(), total)
		}
	}
}

func TestSegment_Contains(t *testing.T) {
	seg := Segment{Start: Date(2024, 1, 1), End: Date(2024, 6, 30)}

	assert.True(t, seg.Contains(Date(2024, 1, 1)))
	assert.True(t, seg.Contains(time.Date(2024, 6, 30, 18, 0, 0, 0, time.UTC)))
	assert.False(t, seg.Contains(Date(2024, 7, 1)))
	assert.False(t, seg.Contains(Date(2023, 12, 31)))
	assert.Equal(t, 182, seg.Days())
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2023-09-01")
	require.NoError(t, err)
	assert.Equal(t, Date(2023, 9, 1), d)
	assert.Equal(t, "2023-09-01", FormatDay(d))

	_, err = ParseDay("01.09.2023")
	assert.Error(t, err)
}
