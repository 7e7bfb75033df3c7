package ring

import (
	"fmt"
	"strconv"

	personv2 "git.fiblab.net/sim/protos/v2/go/city/person/v2"
	"github.com/tsinghua-fib-lab/flowctl/utils/config"
)

// SpecsFromConfig 按车型配置生成车辆名单
// 功能：按配置顺序展开每类车辆，ID为{type}_{序号}
// 参数：c-环形道路配置，persons-可选的外部车辆名单
// 返回：车辆初始化参数
// 说明：persons非空时依次覆盖生成车辆的ID与车辆属性，数量不足的部分保持生成值
func SpecsFromConfig(c config.Ring, persons []*personv2.Person) ([]VehicleSpec, error) {
	var specs []VehicleSpec
	for _, vt := range c.Vehicles {
		if vt.Count < 0 {
			return nil, fmt.Errorf("ring: negative count %d for vehicle type %s", vt.Count, vt.Type)
		}
		switch vt.CarFollowing {
		case "", CarFollowingIDM, CarFollowingRL:
		default:
			return nil, fmt.Errorf("ring: unknown car following model %q for vehicle type %s", vt.CarFollowing, vt.Type)
		}
		attr := config.DefaultVehicleAttribute
		if vt.Attribute != nil {
			attr = *vt.Attribute
		}
		for i := 0; i < vt.Count; i++ {
			cf := vt.CarFollowing
			if cf == "" {
				cf = CarFollowingIDM
			}
			specs = append(specs, VehicleSpec{
				ID:           fmt.Sprintf("%s_%d", vt.Type, i),
				Type:         vt.Type,
				Attr:         attr,
				CarFollowing: cf,
				LaneChange:   vt.LaneChange,
				Lane:         vt.Lane,
				InitialSpeed: vt.InitialSpeed,
			})
		}
	}
	for i, p := range persons {
		if i >= len(specs) {
			log.Warnf("ring: %d persons in roster, only %d vehicles configured", len(persons), len(specs))
			break
		}
		specs[i].ID = strconv.Itoa(int(p.Id))
		if a := p.VehicleAttribute; a != nil {
			specs[i].Attr = config.VehicleAttribute{
				MaxSpeed:                 a.MaxSpeed,
				MaxAcceleration:          a.MaxAcceleration,
				MaxBrakingAcceleration:   a.MaxBrakingAcceleration,
				UsualBrakingAcceleration: a.UsualBrakingAcceleration,
				Length:                   a.Length,
				MinGap:                   a.MinGap,
				Headway:                  a.Headway,
			}
		}
	}
	seen := make(map[string]struct{}, len(specs))
	for _, s := range specs {
		if _, ok := seen[s.ID]; ok {
			return nil, fmt.Errorf("ring: duplicate vehicle id %s", s.ID)
		}
		seen[s.ID] = struct{}{}
		if err := checkAttr(s.ID, s.Attr); err != nil {
			return nil, err
		}
	}
	return specs, nil
}

// checkAttr 车辆属性检查
func checkAttr(id string, a config.VehicleAttribute) error {
	switch {
	case a.MaxSpeed <= 0:
		return fmt.Errorf("ring: vehicle %s (vehicle_attr=%+v) max speed is not positive", id, a)
	case a.MaxAcceleration <= 0:
		return fmt.Errorf("ring: vehicle %s (vehicle_attr=%+v) max acceleration is not positive", id, a)
	case a.MaxBrakingAcceleration >= 0:
		return fmt.Errorf("ring: vehicle %s (vehicle_attr=%+v) max braking acceleration is not negative", id, a)
	case a.UsualBrakingAcceleration >= 0:
		return fmt.Errorf("ring: vehicle %s (vehicle_attr=%+v) usual braking acceleration is not negative", id, a)
	case a.Length <= 0:
		return fmt.Errorf("ring: vehicle %s (vehicle_attr=%+v) length is not positive", id, a)
	case a.MinGap < 0:
		return fmt.Errorf("ring: vehicle %s (vehicle_attr=%+v) min gap is negative", id, a)
	case a.Headway < 0:
		return fmt.Errorf("ring: vehicle %s (vehicle_attr=%+v) headway is negative", id, a)
	}
	return nil
}
