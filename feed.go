package ptv

import (
	"fmt"
	"strconv"
	"time"

	gtfsproto "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"

	"tidbyt.dev/ptv/model"
)

// Builds a GTFS-realtime feed with one TripUpdate per departure. Run
// IDs are used as trip IDs.
func BuildFeed(departures []model.Departure, now time.Time) *gtfsproto.FeedMessage {
	incrementality := gtfsproto.FeedHeader_FULL_DATASET

	entities := make([]*gtfsproto.FeedEntity, 0, len(departures))
	for i, d := range departures {
		t, ok := d.EffectiveTime()
		if !ok {
			continue
		}

		tripID := d.RunID
		if tripID == "" {
			tripID = fmt.Sprintf("%d-%d", d.RouteID, i)
		}

		event := &gtfsproto.TripUpdate_StopTimeEvent{
			Time: proto.Int64(t.Unix()),
		}
		if !d.Estimated.IsZero() && !d.Scheduled.IsZero() {
			event.Delay = proto.Int32(int32(d.Estimated.Sub(d.Scheduled) / time.Second))
		}

		entities = append(entities, &gtfsproto.FeedEntity{
			Id: proto.String(fmt.Sprintf("%s:%s", d.StopID, tripID)),
			TripUpdate: &gtfsproto.TripUpdate{
				// PTV direction IDs don't map onto GTFS's 0/1, so
				// direction_id is left unset.
				Trip: &gtfsproto.TripDescriptor{
					TripId:  proto.String(tripID),
					RouteId: proto.String(strconv.Itoa(d.RouteID)),
				},
				StopTimeUpdate: []*gtfsproto.TripUpdate_StopTimeUpdate{
					{
						StopId:    proto.String(d.StopID),
						Departure: event,
					},
				},
			},
		})
	}

	return &gtfsproto.FeedMessage{
		Header: &gtfsproto.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Incrementality:      &incrementality,
			Timestamp:           proto.Uint64(uint64(now.Unix())),
		},
		Entity: entities,
	}
}

// Serializes a feed, either as binary protobuf or in text format.
func MarshalFeed(feed *gtfsproto.FeedMessage, text bool) ([]byte, error) {
	var data []byte
	var err error
	if text {
		data, err = prototext.MarshalOptions{Multiline: true}.Marshal(feed)
	} else {
		data, err = proto.Marshal(feed)
	}
	if err != nil {
		return nil, fmt.Errorf("marshaling feed: %w", err)
	}
	return data, nil
}
