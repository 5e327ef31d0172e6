package model_test

import (
	"encoding/json"
	"testing"

	model "github.com/okian/robonalysis/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestRawMatchDecoding(t *testing.T) {
	convey.Convey("Given upstream match JSON with mixed id shapes", t, func() {
		payload := `{
			"id": 4411,
			"round": "2",
			"matchnum": 7,
			"instance": null,
			"started": "2024-03-01T10:00:00Z",
			"event": {"id": "55", "name": "Worlds"},
			"alliances": [
				{"color": "red", "score": "12", "teams": [{"team": {"id": 1, "name": "1A"}}, {"team_id": "2"}]},
				{"color": "blue", "score": null, "teams": [{"id": 3}, {"team": null}]}
			]
		}`

		var raw model.RawMatch
		err := json.Unmarshal([]byte(payload), &raw)

		convey.Convey("Then ids should decode as strings", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(raw.ID.String(), convey.ShouldEqual, "4411")
			convey.So(string(raw.Round), convey.ShouldEqual, "2")
			convey.So(string(raw.MatchNum), convey.ShouldEqual, "7")
			convey.So(string(raw.Instance), convey.ShouldEqual, "")
			convey.So(string(raw.Event.ID), convey.ShouldEqual, "55")
		})

		convey.Convey("Then scores should keep null distinct from numbers", func() {
			convey.So(raw.Alliances, convey.ShouldHaveLength, 2)
			convey.So(raw.Alliances[0].Score.Valid, convey.ShouldBeTrue)
			convey.So(raw.Alliances[0].Score.Value, convey.ShouldEqual, 12)
			convey.So(raw.Alliances[1].Score.Valid, convey.ShouldBeFalse)
			convey.So(raw.Alliances[1].Score.Ptr(), convey.ShouldBeNil)
		})

		convey.Convey("Then every team id alias should be captured", func() {
			convey.So(string(raw.Alliances[0].Teams[0].Team.ID), convey.ShouldEqual, "1")
			convey.So(string(raw.Alliances[0].Teams[1].TeamID), convey.ShouldEqual, "2")
			convey.So(string(raw.Alliances[1].Teams[0].ID), convey.ShouldEqual, "3")
			convey.So(raw.Alliances[1].Teams[1].Team, convey.ShouldBeNil)
		})
	})
}

func TestOptFloat(t *testing.T) {
	convey.Convey("Given nullable numbers", t, func() {
		var row model.RankingRow
		err := json.Unmarshal([]byte(`{"rank": "3", "wins": 4, "losses": "n/a", "ties": null}`), &row)

		convey.Convey("Then numeric strings and numbers should be present", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(*row.Rank.Ptr(), convey.ShouldEqual, 3)
			convey.So(*row.Wins.Ptr(), convey.ShouldEqual, 4)
		})

		convey.Convey("Then garbage and null should be absent", func() {
			convey.So(row.Losses.Valid, convey.ShouldBeFalse)
			convey.So(row.Ties.Valid, convey.ShouldBeFalse)
			convey.So(row.SP.Valid, convey.ShouldBeFalse)
		})

		convey.Convey("Then marshalling should round trip the null distinction", func() {
			out, err := json.Marshal(struct {
				A model.OptFloat `json:"a"`
				B model.OptFloat `json:"b"`
			}{A: model.Some(1.5)})
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(out), convey.ShouldEqual, `{"a":1.5,"b":null}`)
		})
	})
}

func TestMatchSides(t *testing.T) {
	score := func(v float64) *float64 { return &v }

	convey.Convey("Given matches with different alliance layouts", t, func() {
		convey.Convey("When both alliances are tagged", func() {
			m := model.Match{Alliances: []model.Alliance{
				{Color: model.ColorBlue, Score: score(3), Teams: []model.TeamRef{{ID: "B"}}},
				{Color: model.ColorRed, Score: score(4), Teams: []model.TeamRef{{ID: "A"}}},
			}}
			red, blue, ok := m.Sides()

			convey.Convey("Then they should be resolved by color", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(red.TeamIDs(), convey.ShouldResemble, []string{"A"})
				convey.So(blue.TeamIDs(), convey.ShouldResemble, []string{"B"})
				convey.So(m.HasTeam("B"), convey.ShouldBeTrue)
				convey.So(m.HasTeam("Z"), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When alliances are untagged", func() {
			m := model.Match{Alliances: []model.Alliance{
				{Teams: []model.TeamRef{{ID: "A"}}},
				{Teams: []model.TeamRef{{ID: "B"}}},
			}}
			red, blue, ok := m.Sides()

			convey.Convey("Then they should be assigned by position", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(red.HasTeam("A"), convey.ShouldBeTrue)
				convey.So(blue.HasTeam("B"), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When only one alliance exists", func() {
			m := model.Match{Alliances: []model.Alliance{{Color: model.ColorRed}}}
			_, _, ok := m.Sides()

			convey.Convey("Then the sides should not resolve", func() {
				convey.So(ok, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When two alliances share one color", func() {
			m := model.Match{Alliances: []model.Alliance{{Color: model.ColorRed}, {Color: model.ColorRed}}}
			_, _, ok := m.Sides()

			convey.Convey("Then they should not be distinguishable", func() {
				convey.So(ok, convey.ShouldBeFalse)
			})
		})
	})
}
