package moss

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	geov2 "git.fiblab.net/sim/protos/v2/go/city/geo/v2"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	mapv2connect "git.fiblab.net/sim/protos/v2/go/city/map/v2/mapv2connect"
	personv2 "git.fiblab.net/sim/protos/v2/go/city/person/v2"
	personv2connect "git.fiblab.net/sim/protos/v2/go/city/person/v2/personv2connect"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/flowctl/entity"
	"github.com/tsinghua-fib-lab/flowctl/utils/config"
)

type fakePersons struct {
	personv2connect.UnimplementedPersonServiceHandler
	persons []*personv2.PersonRuntime
	lastReq *personv2.GetPersonsRequest
}

func (f *fakePersons) GetPersons(ctx context.Context, in *connect.Request[personv2.GetPersonsRequest]) (*connect.Response[personv2.GetPersonsResponse], error) {
	f.lastReq = in.Msg
	return connect.NewResponse(&personv2.GetPersonsResponse{Persons: f.persons}), nil
}

type fakeLights struct {
	mapv2connect.UnimplementedTrafficLightServiceHandler
	reqs []*mapv2.SetTrafficLightRequest
}

func (f *fakeLights) SetTrafficLight(ctx context.Context, in *connect.Request[mapv2.SetTrafficLightRequest]) (*connect.Response[mapv2.SetTrafficLightResponse], error) {
	if in.Msg.TrafficLight.JunctionId != 7 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("junction id does not exist"))
	}
	f.reqs = append(f.reqs, in.Msg)
	return connect.NewResponse(&mapv2.SetTrafficLightResponse{}), nil
}

func driving(id, laneID int32, s, v float64) *personv2.PersonRuntime {
	return &personv2.PersonRuntime{Motion: &personv2.PersonMotion{
		Id:     id,
		Status: personv2.Status_STATUS_DRIVING,
		Position: &geov2.Position{LanePosition: &geov2.LanePosition{
			LaneId: laneID,
			S:      s,
		}},
		V: v,
	}}
}

func newServer(t *testing.T, persons *fakePersons, lights *fakeLights) *Client {
	mux := http.NewServeMux()
	mux.Handle(personv2connect.NewPersonServiceHandler(persons))
	mux.Handle(mapv2connect.NewTrafficLightServiceHandler(lights))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(config.Moss{
		PersonAddr:       srv.URL,
		TrafficLightAddr: srv.URL,
		Edges: map[string][]int32{
			"toll_pre":  {100, 101},
			"toll_post": {200},
		},
	}, srv.Client(), nil)
}

func TestViewObservesDrivingVehicles(t *testing.T) {
	persons := &fakePersons{persons: []*personv2.PersonRuntime{
		driving(1, 101, 35.5, 12),
		driving(2, 200, 3, 8),
		driving(3, 999, 10, 1),
		{Motion: &personv2.PersonMotion{Id: 4, Status: personv2.Status_STATUS_WALKING}},
	}}
	c := newServer(t, persons, &fakeLights{})

	v, err := c.View(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []personv2.Status{personv2.Status_STATUS_SLEEP}, persons.lastReq.ExcludeStatuses)
	require.Len(t, v.Vehicles(), 3)

	s, ok := v.Vehicle("1")
	require.True(t, ok)
	assert.Equal(t, entity.VehicleState{ID: "1", Edge: "toll_pre", Lane: 1, S: 35.5, V: 12}, s)
	s, ok = v.Vehicle("3")
	require.True(t, ok)
	assert.Equal(t, "", s.Edge)
	_, ok = v.Vehicle("4")
	assert.False(t, ok)
}

func TestViewKeepsModeAndColorAcrossSteps(t *testing.T) {
	persons := &fakePersons{persons: []*personv2.PersonRuntime{driving(1, 100, 0, 0)}}
	c := newServer(t, persons, &fakeLights{})

	v, err := c.View(context.Background())
	require.NoError(t, err)
	mode, err := v.LaneChangeMode("1")
	require.NoError(t, err)
	assert.Equal(t, entity.LaneChangeModeDefault, mode)
	require.NoError(t, v.SetLaneChangeMode("1", entity.LaneChangeModeNoChange))
	require.NoError(t, v.SetColor("1", entity.ColorToll))
	assert.Error(t, v.SetColor("2", entity.ColorToll))

	v, err = c.View(context.Background())
	require.NoError(t, err)
	mode, err = v.LaneChangeMode("1")
	require.NoError(t, err)
	assert.Equal(t, entity.LaneChangeModeNoChange, mode)
	color, err := v.Color("1")
	require.NoError(t, err)
	assert.Equal(t, entity.ColorToll, color)

}

func TestApplyLaneChangeIsDropped(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()
	persons := &fakePersons{persons: []*personv2.PersonRuntime{driving(1, 100, 0, 0)}}
	c := newServer(t, persons, &fakeLights{})
	v, err := c.View(context.Background())
	require.NoError(t, err)

	require.NoError(t, v.ApplyLaneChange("1", 1))
	require.NoError(t, v.ApplyLaneChange("1", -1))
	assert.Error(t, v.ApplyLaneChange("2", 1))
	warnings := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings++
		}
	}
	assert.Equal(t, 1, warnings)
}

func TestSetSignalState(t *testing.T) {
	lights := &fakeLights{}
	c := newServer(t, &fakePersons{}, lights)
	v, err := c.View(context.Background())
	require.NoError(t, err)

	require.NoError(t, v.SetSignalState("7", "Grry"))
	require.Len(t, lights.reqs, 1)
	req := lights.reqs[0]
	require.Len(t, req.TrafficLight.Phases, 1)
	assert.Equal(t, []mapv2.LightState{
		mapv2.LightState_LIGHT_STATE_GREEN,
		mapv2.LightState_LIGHT_STATE_RED,
		mapv2.LightState_LIGHT_STATE_RED,
		mapv2.LightState_LIGHT_STATE_YELLOW,
	}, req.TrafficLight.Phases[0].States)
	assert.Equal(t, int32(0), req.PhaseIndex)
	assert.Equal(t, float64(signalHoldDuration), req.TimeRemaining)

	assert.Error(t, v.SetSignalState("8", "G"))
	assert.Error(t, v.SetSignalState("toll", "G"))
}
