package types_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/cragcast/internal/domain/rating"
	types "github.com/okian/cragcast/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCragEntry(t *testing.T) {
	Convey("Given a CragEntry", t, func() {
		e := types.CragEntry{
			Rank:      2,
			CragID:    "frankenjura",
			RockType:  "limestone",
			Score:     3.9,
			Rating:    rating.Great,
			UpdatedAt: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
		}

		Convey("When it is encoded as JSON", func() {
			raw, err := json.Marshal(e)
			So(err, ShouldBeNil)

			Convey("Then the rating is rendered by name and empty names are left out", func() {
				var m map[string]any
				So(json.Unmarshal(raw, &m), ShouldBeNil)
				So(m["rating"], ShouldEqual, "great")
				So(m["crag_id"], ShouldEqual, "frankenjura")
				So(m["updated_at"], ShouldEqual, "2024-06-01T08:00:00Z")
				_, hasName := m["name"]
				So(hasName, ShouldBeFalse)
			})
		})
	})
}
