package sqlinline

const QListProducts = `--sql 667242bf-7e71-45be-8f6f-2995b5063542
select id, title, "values", offer_type, group_name, position, created_at, updated_at
from products
order by group_name asc, position asc, id asc;
`

const QSelectProductsByIDs = `--sql 1d365693-5aca-4cb1-8d61-b5e88b591202
select id, title, "values", offer_type, group_name, position, created_at, updated_at
from products
where id = any($1::text[]);
`

const QUpsertProduct = `--sql d44c09ad-3f59-4450-8f7c-79e6acd18b10
insert into products (id, title, "values", offer_type, group_name, position)
values ($1, $2, $3::jsonb, $4, $5, $6)
on conflict (id) do update
set title = excluded.title,
    "values" = excluded."values",
    offer_type = excluded.offer_type,
    group_name = excluded.group_name,
    position = excluded.position,
    updated_at = now()
returning created_at, updated_at;
`

const QDeleteProduct = `--sql ed32b3eb-075a-4710-8076-940f516900a6
delete from products
where id = $1;
`
