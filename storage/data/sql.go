// Copyright 2021 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package data

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/gorse-io/slopeone/dataset"
	"github.com/gorse-io/slopeone/storage"
	"github.com/juju/errors"
	_ "github.com/lib/pq"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	_ "modernc.org/sqlite"
)

type SQLDriver int

const (
	MySQL SQLDriver = iota
	Postgres
	SQLite
)

// SQLRating is a row of the ratings table.
type SQLRating struct {
	UserId int64   `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	ItemId int64   `gorm:"column:item_id;primaryKey;autoIncrement:false;index"`
	Rating float64 `gorm:"column:rating;not null"`
}

// SQLDatabase stores ratings in MySQL, Postgres or SQLite.
type SQLDatabase struct {
	storage.TablePrefix
	gormDB *gorm.DB
	client *sql.DB
	driver SQLDriver
}

// Init creates the ratings table.
func (d *SQLDatabase) Init() error {
	db := d.gormDB
	if d.driver == MySQL {
		db = db.Set("gorm:table_options", "ENGINE=InnoDB")
	}
	return errors.Trace(db.AutoMigrate(&SQLRating{}))
}

func (d *SQLDatabase) Ping() error {
	return d.client.Ping()
}

func (d *SQLDatabase) Close() error {
	return d.client.Close()
}

// Purge deletes all ratings.
func (d *SQLDatabase) Purge() error {
	return errors.Trace(d.gormDB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&SQLRating{}).Error)
}

func (d *SQLDatabase) BatchInsertRatings(ctx context.Context, ratings []dataset.Rating) error {
	// skip empty list
	if len(ratings) == 0 {
		return nil
	}
	start := time.Now()
	// an upsert must not touch the same row twice, keep the last rating of each pair
	unique := lo.UniqBy(lo.Reverse(append([]dataset.Rating(nil), ratings...)), func(r dataset.Rating) lo.Tuple2[int64, int64] {
		return lo.T2(r.UserId, r.ItemId)
	})
	rows := lo.Map(unique, func(r dataset.Rating, _ int) SQLRating {
		return SQLRating{UserId: r.UserId, ItemId: r.ItemId, Rating: r.Value}
	})
	err := d.gormDB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating"}),
	}).Create(&rows).Error
	if err != nil {
		return errors.Trace(err)
	}
	BatchInsertRatingsSeconds.Observe(time.Since(start).Seconds())
	return nil
}

func (d *SQLDatabase) CountRatings(ctx context.Context) (int, error) {
	var count int64
	if err := d.gormDB.WithContext(ctx).Model(&SQLRating{}).Count(&count).Error; err != nil {
		return 0, errors.Trace(err)
	}
	return int(count), nil
}

func (d *SQLDatabase) LoadDataset(ctx context.Context) (*dataset.Dataset, error) {
	start := time.Now()
	rows, err := d.gormDB.WithContext(ctx).Model(&SQLRating{}).Select("user_id, item_id, rating").Rows()
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rows.Close()
	data := dataset.NewDataset()
	for rows.Next() {
		var rating dataset.Rating
		if err = rows.Scan(&rating.UserId, &rating.ItemId, &rating.Value); err != nil {
			return nil, errors.Trace(err)
		}
		data.AddRating(rating.UserId, rating.ItemId, rating.Value)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	LoadDatasetSeconds.Observe(time.Since(start).Seconds())
	return data, nil
}
