package sqlinline

const QListBases = `--sql f584395f-5f46-47ad-b978-77bb668dc59e
select title, file, products, created_at, updated_at
from bases
order by title asc;
`

const QSelectBase = `--sql ad9e9562-f5c1-4651-bca8-b7d65144ff1e
select title, file, products, created_at, updated_at
from bases
where title = $1;
`

const QUpsertBase = `--sql 95e004ac-7fb1-4bce-8a47-d7d9abaa110a
insert into bases (title, file, products)
values ($1, $2, $3::jsonb)
on conflict (title) do update
set file = excluded.file,
    products = excluded.products,
    updated_at = now()
returning created_at, updated_at;
`

const QDeleteBase = `--sql b789d902-ebc5-487e-a4b5-1e06c0c8c418
delete from bases
where title = $1;
`
