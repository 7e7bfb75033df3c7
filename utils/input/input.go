package input

import (
	"context"
	"fmt"

	"git.fiblab.net/general/common/v2/cache"
	"git.fiblab.net/general/common/v2/mongoutil"
	"git.fiblab.net/general/common/v2/protoutil"
	personv2 "git.fiblab.net/sim/protos/v2/go/city/person/v2"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/flowctl/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"google.golang.org/protobuf/proto"
)

// Input 输入数据
// 功能：存储控制程序可选的外部车辆名单
type Input struct {
	Persons *personv2.Persons
}

// PersonIDs 名单中所有车辆的ID
func (in *Input) PersonIDs() []int32 {
	return lo.Map(in.Persons.Persons, func(p *personv2.Person, _ int) int32 { return p.Id })
}

// Init 加载输入数据
// 功能：根据配置加载车辆名单，未配置时返回空名单
// 参数：c-输入配置，cacheDir-缓存目录
// 返回：加载完成的输入数据指针
// 算法说明：
// 1. 文件加载：支持单个或多个protobuf文件，优先级高于MongoDB
// 2. 数据库加载：从MongoDB下载，可使用本地缓存
// 3. 数据验证：丢弃没有车辆属性的person，ID重复时panic
func Init(c config.Input, cacheDir string) (res *Input) {
	res = &Input{
		Persons: &personv2.Persons{
			Persons: make([]*personv2.Person, 0),
		},
	}
	if c.Person == nil {
		return
	}
	if !preCheckCache(cacheDir) {
		cacheDir = ""
	}

	if c.Person.File != "" {
		var p personv2.Persons
		if err := protoutil.UnmarshalFromFile(&p, c.Person.File); err != nil {
			log.Panicf("failed to load person from file: %v", err)
		}
		res.Persons = &p
	} else if len(c.Person.Files) > 0 {
		// 读取多个文件
		for _, file := range c.Person.Files {
			var p personv2.Persons
			if err := protoutil.UnmarshalFromFile(&p, file); err != nil {
				log.Panicf("failed to load person from file: %v", err)
			}
			res.Persons.Persons = append(res.Persons.Persons, p.Persons...)
		}
	} else {
		var client *mongo.Client
		if c.URI != "" {
			client = mongoutil.NewClient(c.URI)
			defer client.Disconnect(context.Background())
		}
		res.Persons = mustLoad[personv2.Persons](client, *c.Person, cacheDir, nil, func(className string, pb any, rawBson bson.Raw) error {
			if err := checkPerson(pb.(*personv2.Person)); err != nil {
				log.Warn(err)
			}
			return nil
		})
	}
	res.Persons.Persons = lo.Filter(res.Persons.Persons, func(p *personv2.Person, _ int) bool {
		return checkPerson(p) == nil
	})
	if len(res.Persons.Persons) == 0 {
		log.Error("no valid persons with vehicle attribute in roster")
	}
	personIDs := make(map[int32]struct{})
	for _, p := range res.Persons.Persons {
		if _, ok := personIDs[p.Id]; ok {
			log.Panicf("persons have duplicated ids %d, please check data", p.Id)
		}
		personIDs[p.Id] = struct{}{}
	}
	log.Infof("loaded %d persons", len(res.Persons.Persons))
	return
}

// checkPerson 只有带车辆属性的person可以作为受控车辆
func checkPerson(p *personv2.Person) error {
	if p.VehicleAttribute == nil {
		return fmt.Errorf("ignore person %v without vehicle attribute", p.Id)
	}
	return nil
}

// mustLoad 必须加载数据（泛型函数）
// 功能：从MongoDB或缓存中加载数据，失败时panic
// 参数：client-MongoDB客户端，inputPath-输入路径配置，cacheDir-缓存目录，classNameMapper-类名映射器，handler-数据处理函数，opts-查询选项
func mustLoad[T any, PT interface {
	proto.Message
	*T
}](
	client *mongo.Client,
	inputPath config.InputPath,
	cacheDir string,
	classNameMapper func(string) string,
	handler func(className string, pb any, rawBson bson.Raw) error,
	opts ...*options.FindOptions,
) (res PT) {
	var downloadFunc func() PT
	var err error
	if !inputPath.OnlyCache {
		if client == nil {
			log.Panicf("no mongo uri to download %s.%s", inputPath.DB, inputPath.Col)
		}
		coll := mongoutil.GetMongoColl(client, inputPath)
		downloadFunc = func() PT {
			pb, errs := mongoutil.DownloadPbFromMongo[T, PT](context.Background(), coll, classNameMapper, handler, opts...)
			if len(errs) > 0 {
				for _, err := range errs {
					log.Errorf("failed to download: %v", err)
				}
				log.Panicln("failed to download")
			}
			return pb
		}
	}
	log.Infof("start fetching from %s.%s", inputPath.DB, inputPath.Col)
	res, err = cache.LoadWithCache(cacheDir, inputPath, downloadFunc)
	if err != nil {
		log.Panicf("failed to load with cache: %v", err)
	}
	log.Infof("finish fetching from %s.%s", inputPath.DB, inputPath.Col)
	return
}
