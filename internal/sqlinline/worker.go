package sqlinline

const QWorkerClaimVideo = `--sql 6e66355e-00c7-4d73-8c16-41f50079b547
with next_video as (
    select id
    from videos
    where status = 'queued'
    order by created_at asc
    for update skip locked
    limit 1
),
updated as (
    update videos
    set status = 'processing', updated_at = now(), error_message = ''
    where id in (select id from next_video)
    returning id, description, base_video, configs, product_keys, status, generated_video, error_message, youtube_id, created_at, updated_at
)
select * from updated;
`

const QMarkVideoDone = `--sql 44c2af07-3596-4cfd-b8bb-6cdfafea612a
update videos
set status = 'done', generated_video = $2, error_message = '', updated_at = now()
where id = $1;
`

const QMarkVideoError = `--sql 4359ede1-b73b-45a0-b88e-d3602c65e95d
update videos
set status = 'error', error_message = $2, updated_at = now()
where id = $1;
`

const QRequeueStaleVideos = `--sql 55605cc7-a8b0-4409-a6cb-ebd835c3ccf1
update videos
set status = 'queued', updated_at = now()
where status = 'processing'
  and updated_at < now() - make_interval(secs => $1);
`

const QTouchVideo = `--sql d41c7e08-5b2a-4f93-a6e7-3b8c90f1e265
update videos
set updated_at = now()
where id = $1 and status = 'processing';
`

const QMarkVideoPublished = `--sql 7c2e94b1-0f6d-4a58-9e3b-5d18a6c4f072
update videos
set youtube_id = $2, updated_at = now()
where id = $1 and status = 'done';
`
