package sqlinline

const QListVideos = `--sql b7d35d85-88c1-45d9-9713-01d5625f64a7
select id, description, base_video, configs, product_keys, status, generated_video, error_message, youtube_id, created_at, updated_at
from videos
order by created_at desc, id asc;
`

const QSelectVideo = `--sql 4b9572b5-427f-4d5c-8775-3e5bd1eadd63
select id, description, base_video, configs, product_keys, status, generated_video, error_message, youtube_id, created_at, updated_at
from videos
where id = $1;
`

const QInsertVideo = `--sql 6db82e68-e6e9-437a-a06d-890626737596
insert into videos (id, description, base_video, configs, product_keys, status)
values ($1, $2, $3, $4::jsonb, $5::jsonb, $6)
returning created_at, updated_at;
`

const QDeleteVideoByGenerated = `--sql 0f856d94-db14-43a5-96cd-f9653d3d3042
delete from videos
where generated_video = $1
returning id, description, base_video, configs, product_keys, status, generated_video, error_message, youtube_id, created_at, updated_at;
`

const QDeleteVideoByID = `--sql 9a3f1c52-7e4b-4d08-b6a1-2c5e8f0d7b94
delete from videos
where id = $1
returning id, description, base_video, configs, product_keys, status, generated_video, error_message, youtube_id, created_at, updated_at;
`
